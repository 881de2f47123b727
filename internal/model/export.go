package model

// ExportEntry is a single encoded image ready to be written into an archive
type ExportEntry struct {
	Name string // archive-relative name, e.g. "image_2_7.jpg"
	Data []byte
	MIME string // media type of Data, e.g. "image/jpeg"
}

// ExportResult is a finished export archive together with its statistics
type ExportResult struct {
	Filename string // suggested archive filename, e.g. "images_red_pandas_page2.zip"
	Data     []byte
	Exported int // entries written into the archive
	Skipped  int // source items dropped due to fetch or decode failures
}
