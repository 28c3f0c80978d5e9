package record

import (
	"strconv"
	"time"

	domrec "github.com/kailas-cloud/recsearch/internal/domain/record"
	"github.com/kailas-cloud/recsearch/internal/domain/search/filter"
)

// LoadAttrs lists every attribute a stored record carries.
var LoadAttrs = []string{
	domrec.AttrID,
	domrec.AttrRecommendationID,
	domrec.AttrTitle,
	domrec.AttrBody,
	domrec.AttrType,
	domrec.AttrCategory,
	domrec.AttrPriority,
	domrec.AttrStatus,
	domrec.AttrSubmissionBaseNr,
	domrec.AttrSubmissionID,
	domrec.AttrObjectID,
	domrec.AttrObjectName,
	domrec.AttrRCID,
	domrec.AttrLossEstimateBefore,
	domrec.AttrLossEstimateAfter,
	domrec.AttrCurrency,
	domrec.AttrDueDate,
	domrec.AttrCompletedDate,
	domrec.AttrSeq,
}

// ToHash flattens r for HSET. Empty strings and nil values are omitted so
// absent attributes stay absent in the index. Dates are stored as Unix
// seconds of their UTC day, the same form DATE filters compile to.
func ToHash(r *domrec.Record) map[string]string {
	m := make(map[string]string, len(LoadAttrs))
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put(domrec.AttrID, r.ID)
	put(domrec.AttrRecommendationID, r.RecommendationID)
	put(domrec.AttrTitle, r.Title)
	put(domrec.AttrBody, r.Body)
	put(domrec.AttrType, r.Type)
	put(domrec.AttrCategory, r.Category)
	put(domrec.AttrPriority, r.Priority)
	put(domrec.AttrStatus, r.Status)
	put(domrec.AttrSubmissionBaseNr, r.SubmissionBaseNr)
	put(domrec.AttrSubmissionID, r.SubmissionID)
	put(domrec.AttrObjectID, r.ObjectID)
	put(domrec.AttrObjectName, r.ObjectName)
	put(domrec.AttrRCID, r.RCID)
	put(domrec.AttrCurrency, r.Currency)
	if r.LossEstimateBefore != nil {
		m[domrec.AttrLossEstimateBefore] = formatFloat(*r.LossEstimateBefore)
	}
	if r.LossEstimateAfter != nil {
		m[domrec.AttrLossEstimateAfter] = formatFloat(*r.LossEstimateAfter)
	}
	if r.DueDate != nil {
		m[domrec.AttrDueDate] = strconv.FormatInt(filter.Day(*r.DueDate).Unix(), 10)
	}
	if r.CompletedDate != nil {
		m[domrec.AttrCompletedDate] = strconv.FormatInt(filter.Day(*r.CompletedDate).Unix(), 10)
	}
	if r.Seq > 0 {
		m[domrec.AttrSeq] = strconv.FormatInt(r.Seq, 10)
	}
	return m
}

// FromHash rebuilds a record from hash fields. Unparseable numbers and
// dates are treated as absent.
func FromHash(id string, m map[string]string) domrec.Record {
	r := domrec.Record{
		ID:               id,
		RecommendationID: m[domrec.AttrRecommendationID],
		Title:            m[domrec.AttrTitle],
		Body:             m[domrec.AttrBody],
		Type:             m[domrec.AttrType],
		Category:         m[domrec.AttrCategory],
		Priority:         m[domrec.AttrPriority],
		Status:           m[domrec.AttrStatus],
		SubmissionBaseNr: m[domrec.AttrSubmissionBaseNr],
		SubmissionID:     m[domrec.AttrSubmissionID],
		ObjectID:         m[domrec.AttrObjectID],
		ObjectName:       m[domrec.AttrObjectName],
		RCID:             m[domrec.AttrRCID],
		Currency:         m[domrec.AttrCurrency],
	}
	if v, ok := m[domrec.AttrID]; ok && v != "" {
		r.ID = v
	}
	r.LossEstimateBefore = parseFloat(m, domrec.AttrLossEstimateBefore)
	r.LossEstimateAfter = parseFloat(m, domrec.AttrLossEstimateAfter)
	r.DueDate = parseUnix(m, domrec.AttrDueDate)
	r.CompletedDate = parseUnix(m, domrec.AttrCompletedDate)
	if v, err := strconv.ParseInt(m[domrec.AttrSeq], 10, 64); err == nil {
		r.Seq = v
	}
	return r
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(m map[string]string, k string) *float64 {
	v, ok := m[k]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseUnix(m map[string]string, k string) *time.Time {
	v, ok := m[k]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(n, 0).UTC()
	return &t
}
