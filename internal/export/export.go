// Package export serializes question batches to the flat CSV and JSON shapes
// the game importer expects.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/henzelabs/chattrivia/internal/question"
)

// csvHeader matches the column layout consumed downstream: options flattened
// into four fixed columns, the correct answer as a letter.
var csvHeader = []string{
	"question", "correct_answer", "explanation", "difficulty", "category",
	"option_A", "option_B", "option_C", "option_D",
}

// WriteCSV writes questions to w with the standard header.
func WriteCSV(w io.Writer, qs []question.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, q := range qs {
		record := []string{
			q.Prompt, q.CorrectLabel, q.Explanation, q.Difficulty, q.Category,
			q.Options[0].Text, q.Options[1].Text, q.Options[2].Text, q.Options[3].Text,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes questions to w as an indented JSON array.
func WriteJSON(w io.Writer, qs []question.Question) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(qs); err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return nil
}

// SaveCSV writes questions to a file at path.
func SaveCSV(path string, qs []question.Question) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, qs); err != nil {
		return err
	}
	return f.Close()
}

// SaveJSON writes questions to a file at path.
func SaveJSON(path string, qs []question.Question) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteJSON(f, qs); err != nil {
		return err
	}
	return f.Close()
}
