package ports

import (
	"toxeval/adapters/excel"
)

// StudyReaderPort abstracts study measurement ingestion so the evaluation
// service does not care whether data arrives from a workbook, a flat file
// or a test fixture
type StudyReaderPort interface {
	ReadStudy() (*excel.RawStudy, error)
}
