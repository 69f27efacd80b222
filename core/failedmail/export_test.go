package failedmail

var (
	WriteAtomic = writeAtomic
	SyncDir     = syncDir
)
