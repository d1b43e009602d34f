// Package models defines the input and derived data structures for the
// title-level discovery export.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexInt is an integer identifier that tolerates both JSON numbers and
// numeric strings, since W3ACT exports are not consistent about which
// form they use. Anything else is a decode error.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse identifier %s: %w", string(data), err)
	}
	*f = FlexInt(n)
	return nil
}

// Target is one archived website candidate from the W3ACT target export.
// URLs are ordered; the first entry is the canonical URL.
type Target struct {
	ID             FlexInt   `json:"id"`
	Title          string    `json:"title"`
	URLs           []string  `json:"urls"`
	CrawlFrequency string    `json:"crawl_frequency"`
	OpenAccess     bool      `json:"isOA"`
	LegalDeposit   bool      `json:"isNPLD"`
	Watched        bool      `json:"watched"`
	SubjectIDs     []FlexInt `json:"subject_ids"`
}

// Collection is a curated grouping of targets. Collections are indexed
// and counted during a run but never attached to output records.
type Collection struct {
	ID      FlexInt `json:"id"`
	Name    string  `json:"name"`
	Publish bool    `json:"publish"`
}

// Subject is a topical classification; the name of a target's first
// subject is carried into its publication record.
type Subject struct {
	ID      FlexInt `json:"id"`
	Name    string  `json:"name"`
	Publish bool    `json:"publish"`
}

// PublicationRecord is one discoverable title in the export. Records are
// built once per eligible target and never mutated afterwards.
type PublicationRecord struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Publisher  string `json:"publisher"`
	Rights     string `json:"rights"`
	WaybackURL string `json:"wayback_url"`
	Subject    string `json:"subject,omitempty"`
}

// RunCounters partitions the input target set across run outcomes.
// Published + Blocked + Missing + Embargoed + Skipped == Targets.
type RunCounters struct {
	Targets              int
	Collections          int
	CollectionsPublished int
	Subjects             int
	SubjectsPublished    int
	Published            int
	Blocked              int
	Missing              int
	Embargoed            int
	Skipped              int
}

// ExportResult holds the overall result of one export run.
type ExportResult struct {
	Records   []*PublicationRecord
	Counters  RunCounters
	StartTime time.Time
	EndTime   time.Time
}
