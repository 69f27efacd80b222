// Package delivery is the HTTP front of the mail pipeline: a contact form
// endpoint that sends submissions to the support inbox through a mailer and
// keeps undelivered ones for resend.
//
// Routes:
//
//	GET  /api/csrf      {"csrfToken":"..."} and the signed secret cookie
//	POST /api/feedback  JSON Feedback, throttled per client and globally,
//	                    X-CSRF-Token header required
//	GET  /health/live   liveness probe
//	GET  /health/ready  readiness probe over WithReadinessChecks
//
// Feedback responses:
//
//	200 {"status":"delivered"}
//	202 {"status":"saved","id":"..."}      delivery failed, kept for resend
//	400 {"message":"...","fields":{...}}   invalid input
//	401 {"message":"Invalid CSRF token"}   missing or mismatched token
//	423 {"status":"persist_failed",...}    delivery and saving failed
//	429 {"message":"..."}                  throttled
//	535 {"status":"failed",...}            delivery failed, nothing saved
//
// Usage:
//
//	app, err := delivery.New(m,
//		delivery.WithConfig(cfg.Delivery),
//		delivery.WithNotifier(tg, formatter),
//		delivery.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	g.Go(srv.Run(ctx, app.Handler()))
package delivery
