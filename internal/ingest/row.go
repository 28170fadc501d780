package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeopardy/internal/model"
)

// Columns: Show Number, Air Date, Round, Category, Value, Question, Answer.
const columnCount = 7

func parseRow(fields []string) (model.Question, error) {
	if len(fields) != columnCount {
		return model.Question{}, eris.Errorf("expected %d columns, got %d", columnCount, len(fields))
	}

	show, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return model.Question{}, eris.Wrapf(err, "show number %q", fields[0])
	}

	airDate, err := time.Parse(model.AirDateLayout, strings.TrimSpace(fields[1]))
	if err != nil {
		return model.Question{}, eris.Wrapf(err, "air date %q", fields[1])
	}

	value, err := model.ParseIngestValue(fields[4])
	if err != nil {
		return model.Question{}, err
	}

	return model.Question{
		ShowNumber: show,
		AirDate:    airDate,
		Round:      fields[2],
		Category:   fields[3],
		Value:      value,
		Text:       fields[5],
		Answer:     fields[6],
	}, nil
}
