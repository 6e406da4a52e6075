package vocab

import "vocamail/internal/fileutil"

// StagingFile is a JSON array of MailedRecord, always read and written whole.
type StagingFile struct {
	Path string
}

// Load returns the staged records. A missing or empty file yields none.
func (f StagingFile) Load() ([]MailedRecord, error) {
	var records []MailedRecord
	if _, err := fileutil.ReadJSON(f.Path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save atomically replaces the file with records.
func (f StagingFile) Save(records []MailedRecord) error {
	return fileutil.WriteJSONAtomic(f.Path, nonNil(records))
}
