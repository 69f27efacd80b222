// Package failedmail durably records emails that could not be delivered so they
// can be inspected and resent later.
//
// A Store keeps all records in one JSON document (by default failedEmails.json):
//
//	{"failedEmails": [{"id": "...", "from": "...", "to": ["..."], "subject": "...",
//	  "html": "...", "attachments": [{"filename": "...", "path": "..."}],
//	  "createdAt": "2025-01-02T03:04:05Z"}]}
//
// Every mutation re-reads the document and rewrites it whole through a temp file
// and rename, so a crash leaves either the previous or the new document on disk.
//
// An AttachmentStore copies attachment payloads into one directory per record id
// (failed-email-attachments/<id>/) under sanitized ASCII names. Failures on single
// attachments are logged and skipped.
//
// # Usage
//
//	store, err := failedmail.Open("data/failedEmails.json", failedmail.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	id, _ := store.NewID()
//	stored, err := store.Attachments().Persist(ctx, id, msg.Attachments)
//	if err != nil {
//		return err
//	}
//	draft := failedmail.DraftFromMessage(id, msg)
//	draft.Attachments = stored
//	if _, err := store.Append(ctx, draft); err != nil {
//		store.Attachments().Discard(ctx, id)
//		return err
//	}
//
// Removing a record and its files are two explicit calls:
//
//	store.Attachments().DeleteAll(ctx, rec.Attachments)
//	_ = store.Remove(ctx, rec.ID)
//
// The store serializes calls within one process. Sharing the file between
// processes requires external locking.
package failedmail
