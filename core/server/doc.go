// Package server runs an http.Handler with production timeouts and graceful
// shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Start binds the address synchronously, so a busy port is reported before the
// server is considered running. Addr returns the bound address, which makes
// ":0" usable in tests.
//
// Request contexts are detached from the Start context: canceling it triggers
// a graceful Stop through Run instead of aborting in-flight deliveries.
//
// TLS is enabled when Config names a certificate and key file, or with WithTLS.
package server
