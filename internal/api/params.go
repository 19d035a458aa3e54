package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/camaras-ia/licencias-cli/internal/metrics"
)

// ErrBadRequest matches every query-parameter validation error.
var ErrBadRequest = eris.New("api: bad request")

const dateLayout = "2006-01-02"

type paramError struct {
	param string
	msg   string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.param, e.msg)
}

func (e *paramError) Is(target error) bool {
	return target == ErrBadRequest
}

// ParseDateRange reads start and end as YYYY-MM-DD in loc. The end date is
// inclusive through its last nanosecond. Both empty yields nil.
func ParseDateRange(start, end string, loc *time.Location) (*metrics.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	var r metrics.DateRange
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, loc)
		if err != nil {
			return nil, &paramError{param: "start", msg: "expected YYYY-MM-DD"}
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, loc)
		if err != nil {
			return nil, &paramError{param: "end", msg: "expected YYYY-MM-DD"}
		}
		r.End = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return nil, &paramError{param: "end", msg: "must not be before start"}
	}
	return &r, nil
}

// ParseUserType validates the user_type filter.
func ParseUserType(s string) (metrics.UserType, error) {
	ut, ok := metrics.ParseUserType(s)
	if !ok {
		return "", &paramError{param: "user_type", msg: fmt.Sprintf("%q is not one of colaborador, empresa", s)}
	}
	return ut, nil
}

func parseOverviewParams(q url.Values, loc *time.Location) (metrics.OverviewParams, error) {
	r, err := ParseDateRange(q.Get("start"), q.Get("end"), loc)
	if err != nil {
		return metrics.OverviewParams{}, err
	}
	return metrics.OverviewParams{DateRange: r}, nil
}

func parseUsageParams(q url.Values, loc *time.Location) (metrics.UsageParams, error) {
	r, err := ParseDateRange(q.Get("start"), q.Get("end"), loc)
	if err != nil {
		return metrics.UsageParams{}, err
	}
	ut, err := ParseUserType(q.Get("user_type"))
	if err != nil {
		return metrics.UsageParams{}, err
	}
	return metrics.UsageParams{
		DateRange: r,
		UserType:  ut,
		ChamberID: strings.TrimSpace(q.Get("chamber_id")),
	}, nil
}

func parseParams(q url.Values, loc *time.Location) (metrics.Params, error) {
	ov, err := parseOverviewParams(q, loc)
	if err != nil {
		return metrics.Params{}, err
	}
	us, err := parseUsageParams(q, loc)
	if err != nil {
		return metrics.Params{}, err
	}
	return metrics.Params{Overview: ov, Usage: us}, nil
}
