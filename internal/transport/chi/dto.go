package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/recsearch/internal/domain"
	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/field"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/recsearch/internal/domain/search/page"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
)

const dateLayout = "2006-01-02"

func searchRequestFromAPI(req SearchRequest, lim request.Limits) (request.Request, error) {
	if req.StartRow == nil || req.EndRow == nil {
		return request.Request{}, fmt.Errorf("%w: startRow and endRow are required", domain.ErrInvalidRequest)
	}

	sort := make([]request.SortKey, 0, len(req.SortModel))
	for _, s := range req.SortModel {
		dir, err := request.ParseDirection(s.Direction)
		if err != nil {
			return request.Request{}, err
		}
		sort = append(sort, request.SortKey{Field: field.Name(s.Field), Direction: dir})
	}

	filters, err := filterModelFromAPI(req.FilterModel)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(filters, sort, *req.StartRow, *req.EndRow, lim)
}

// filterModelFromAPI converts the wire filter model. JSON objects are
// unordered, so entries are taken in field-name order.
func filterModelFromAPI(m map[string]FilterModelItem) (filter.Model, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	var model filter.Model
	for _, name := range names {
		entry, err := filterEntryFromAPI(name, m[name])
		if err != nil {
			return filter.Model{}, err
		}
		model.Put(field.Name(name), entry)
	}
	return model, nil
}

func filterEntryFromAPI(name string, it FilterModelItem) (filter.Entry, error) {
	kind := field.Kind(strings.ToUpper(strings.TrimSpace(it.Kind)))
	op := field.Operator(strings.ToUpper(strings.TrimSpace(it.Operator)))
	reject := func(reason string) error {
		return domain.NewInvalidFilter(name, string(kind), string(op), reason)
	}
	if !kind.IsValid() {
		return nil, reject("unknown filter kind")
	}

	switch kind {
	case field.Text:
		if op == "" {
			op = field.Contains
		}
		v, err := decodeString(it.Value)
		if err != nil {
			return nil, reject("value must be a string")
		}
		e, err := filter.NewText(op, v)
		if err != nil {
			return nil, reject("operator not allowed for kind")
		}
		return e, nil

	case field.Number:
		if op == "" {
			op = field.Equals
		}
		if op == field.InRange {
			if len(it.Range) != 2 {
				return nil, reject("range requires exactly two bounds")
			}
			low, err1 := decodeNumber(it.Range[0])
			high, err2 := decodeNumber(it.Range[1])
			if err1 != nil || err2 != nil {
				return nil, reject("range bounds must be numbers")
			}
			return filter.NewNumberRange(low, high), nil
		}
		v, err := decodeNumber(it.Value)
		if err != nil {
			return nil, reject("value must be a number")
		}
		e, err := filter.NewNumber(op, v)
		if err != nil {
			return nil, reject("operator not allowed for kind")
		}
		return e, nil

	case field.Date:
		if op == "" {
			op = field.Equals
		}
		if op == field.InRange {
			if len(it.Range) != 2 {
				return nil, reject("range requires exactly two bounds")
			}
			low, err1 := decodeDate(it.Range[0])
			high, err2 := decodeDate(it.Range[1])
			if err1 != nil || err2 != nil {
				return nil, reject("range bounds must be dates (YYYY-MM-DD)")
			}
			return filter.NewDateRange(low, high), nil
		}
		v, err := decodeDate(it.Value)
		if err != nil {
			return nil, reject("value must be a date (YYYY-MM-DD)")
		}
		e, err := filter.NewDate(op, v)
		if err != nil {
			return nil, reject("operator not allowed for kind")
		}
		return e, nil

	default: // field.Set
		if op != "" {
			return nil, reject("set filters take no operator")
		}
		values := make([]string, 0, len(it.Values))
		for _, raw := range it.Values {
			v, err := decodeScalar(raw)
			if err != nil {
				return nil, reject("set values must be scalars")
			}
			values = append(values, v)
		}
		e, err := filter.NewSet(values)
		if err != nil {
			return nil, reject(err.Error())
		}
		return e, nil
	}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString reads a JSON string. A missing value is blank.
func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

// decodeNumber reads a JSON number or a numeric string.
func decodeNumber(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, fmt.Errorf("missing number")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// decodeDate reads a calendar day or an RFC 3339 timestamp.
func decodeDate(raw json.RawMessage) (time.Time, error) {
	s, err := decodeString(raw)
	if err != nil {
		return time.Time{}, err
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func decodeScalar(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", fmt.Errorf("null set value")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported set value %s", raw)
	}
}

func pageToAPI(p page.Page) SearchResponse {
	rows := make([]Recommendation, len(p.Rows))
	for i := range p.Rows {
		rows[i] = recordToAPI(&p.Rows[i])
	}
	return SearchResponse{Rows: rows, LastRow: p.LastRow}
}

func recordToAPI(r *domrec.Record) Recommendation {
	return Recommendation{
		ID:                      r.ID,
		RecommendationID:        r.RecommendationID,
		RecommendationTitle:     r.Title,
		RecommendationBody:      r.Body,
		RecommendationType:      r.Type,
		RecommendationCategory:  r.Category,
		RecommendationPriority:  r.Priority,
		RecommendationStatus:    r.Status,
		SubmissionBaseNr:        r.SubmissionBaseNr,
		SubmissionID:            r.SubmissionID,
		ObjectID:                r.ObjectID,
		ObjectName:              r.ObjectName,
		RCID:                    r.RCID,
		LossEstimateBeforeValue: r.LossEstimateBefore,
		LossEstimateAfterValue:  r.LossEstimateAfter,
		Currency:                r.Currency,
		DueDate:                 formatDate(r.DueDate),
		CompletedDate:           formatDate(r.CompletedDate),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
