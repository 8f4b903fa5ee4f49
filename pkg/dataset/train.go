package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dialoglab/convogen/pkg/logger"
)

// TrainingRecord is one instruction-tuning example. History holds earlier
// exchanges of the same conversation as [instruction, output] pairs.
type TrainingRecord struct {
	Instruction string      `json:"instruction"`
	Input       string      `json:"input"`
	Output      string      `json:"output"`
	History     [][2]string `json:"history"`
}

// PackFile converts one conversation CSV into training records. Each exchange
// pairs the initiator's utterance (instruction) with the responder's reply
// (output). Without history the opening exchange is dropped as warm-up; with
// history it feeds the History field of later records instead.
func PackFile(path string, useHistory bool) ([]TrainingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := packCSV(f, useHistory)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", path, err)
	}
	return records, nil
}

// PackDir packs every .csv file in a directory, in name order.
func PackDir(dir string, useHistory bool) ([]TrainingRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var all []TrainingRecord
	for _, name := range names {
		records, err := PackFile(filepath.Join(dir, name), useHistory)
		if err != nil {
			return nil, err
		}
		logger.InfoCF("dataset", "Packed conversation file", map[string]any{
			"file":    name,
			"records": len(records),
		})
		all = append(all, records...)
	}
	return all, nil
}

func packCSV(r io.Reader, useHistory bool) ([]TrainingRecord, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	columns := indexColumns(rows[0])
	for _, required := range []string{"turn", "content"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var records []TrainingRecord
	var history [][2]string
	instruction := ""
	haveInstruction := false

	for _, row := range rows[1:] {
		turn, err := strconv.Atoi(strings.TrimSpace(row[columns["turn"]]))
		if err != nil {
			return nil, fmt.Errorf("bad turn number %q", row[columns["turn"]])
		}
		content := strings.TrimSpace(row[columns["content"]])

		if !haveInstruction {
			instruction = content
			haveInstruction = true
			continue
		}

		// Second utterance of the exchange completes the pair.
		if useHistory {
			snapshot := make([][2]string, len(history))
			copy(snapshot, history)
			records = append(records, TrainingRecord{
				Instruction: instruction,
				Output:      content,
				History:     snapshot,
			})
			history = append(history, [2]string{instruction, content})
		} else if turn > 0 {
			records = append(records, TrainingRecord{
				Instruction: instruction,
				Output:      content,
				History:     [][2]string{},
			})
		}
		haveInstruction = false
	}
	return records, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

// SaveTraining writes records as a pretty-printed JSON array.
func SaveTraining(records []TrainingRecord, path string) error {
	if records == nil {
		records = []TrainingRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// TimestampedName inserts a timestamp before the extension, so repeated
// packing runs never clobber each other.
func TimestampedName(base string, now time.Time) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_" + now.Format("20060102_150405") + ext
}
