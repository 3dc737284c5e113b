package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"toxeval/domain/study"

	"github.com/xuri/excelize/v2"

	"toxeval/internal"
)

// measurementSheet is the workbook sheet holding per-subject observations
const measurementSheet = "Measurements"

// expected header columns, in order
var expectedColumns = []string{
	"study_id", "endpoint", "organ_system", "domain", "test_code",
	"specimen", "sex", "dose_level", "dose", "subject_id", "value",
}

// StudyReader reads study measurement workbooks (xlsx) or flat files (csv)
type StudyReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewStudyReader creates a reader that handles both Excel and CSV files
func NewStudyReader(filePath string) *StudyReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &StudyReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger,
	}
}

// ReadStudy reads the study measurements into structured form
func (r *StudyReader) ReadStudy() (*RawStudy, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("study file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	return r.parseRows(rows)
}

func (r *StudyReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(measurementSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", measurementSheet, err)
	}
	return rows, nil
}

func (r *StudyReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// parseRows converts header+data rows into measurements
func (r *StudyReader) parseRows(rows [][]string) (*RawStudy, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("study file has no data rows")
	}

	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range expectedColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("study file missing required column %q", col)
		}
	}

	raw := &RawStudy{}
	skipped := 0
	for rowNum, row := range rows[1:] {
		m, err := parseMeasurement(row, colIdx)
		if err != nil {
			// Partially filled trailing rows are common in hand-edited
			// workbooks; skip and count rather than abort.
			r.logger.Warn("skipping row %d: %v", rowNum+2, err)
			skipped++
			continue
		}
		if raw.StudyID == "" {
			raw.StudyID = m.StudyID
		}
		raw.Measurements = append(raw.Measurements, m)
	}

	if len(raw.Measurements) == 0 {
		return nil, fmt.Errorf("study file contains no parseable measurements (%d rows skipped)", skipped)
	}
	r.logger.Info("read %d measurements from %s (%d rows skipped)",
		len(raw.Measurements), r.filePath, skipped)
	return raw, nil
}

func parseMeasurement(row []string, colIdx map[string]int) (Measurement, error) {
	get := func(col string) string {
		idx := colIdx[col]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	doseLevel, err := strconv.Atoi(get("dose_level"))
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid dose_level %q", get("dose_level"))
	}
	dose, err := strconv.ParseFloat(get("dose"), 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid dose %q", get("dose"))
	}
	value, err := strconv.ParseFloat(get("value"), 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid value %q", get("value"))
	}

	sex := study.Sex(strings.ToUpper(get("sex")))
	if sex != study.SexMale && sex != study.SexFemale {
		return Measurement{}, fmt.Errorf("invalid sex %q", get("sex"))
	}

	return Measurement{
		StudyID:     get("study_id"),
		Endpoint:    get("endpoint"),
		OrganSystem: get("organ_system"),
		Domain:      get("domain"),
		TestCode:    get("test_code"),
		Specimen:    get("specimen"),
		Sex:         sex,
		DoseLevel:   doseLevel,
		Dose:        dose,
		SubjectID:   get("subject_id"),
		Value:       value,
	}, nil
}
