// Package exporter turns W3ACT datasets into an ordered set of
// publication records describing which archived titles are publicly
// discoverable.
package exporter

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/ukwa-discovery/title-export/config"
	"github.com/ukwa-discovery/title-export/models"
)

const (
	// crawlFrequencyBlocked marks targets administratively excluded
	// from discovery.
	crawlFrequencyBlocked = "NEVERCRAWL"

	rightsOpenAccess   = "***Free access"
	rightsReadingRooms = "***Available only in our Reading Rooms"

	captureTimestampLayout = "20060102150405"
	recordDateLayout       = "2006-01-02T15:04:05"
)

// CaptureIndex answers when a URL was first archived. FirstCapture
// returns "" when the index has no entry for the URL.
type CaptureIndex interface {
	FirstCapture(ctx context.Context, url string) (string, error)
}

// Exporter applies the eligibility gates and builds publication records.
type Exporter struct {
	index            CaptureIndex
	embargo          time.Duration
	publicPrefix     string
	restrictedPrefix string

	now func() time.Time
}

// New builds an exporter over the given capture index.
func New(cfg *config.Config, index CaptureIndex) *Exporter {
	return &Exporter{
		index:            index,
		embargo:          cfg.Embargo(),
		publicPrefix:     cfg.PublicWaybackPrefix,
		restrictedPrefix: cfg.RestrictedWaybackPrefix,
		now:              time.Now,
	}
}

// Build evaluates every target in input order against the eligibility
// gates and returns the resulting records plus run counters. Gates are
// checked in a fixed order and the first match wins: blocked, no URL,
// no known capture, embargoed. Targets that fail none of the gates but
// lack a title are skipped with a warning.
//
// A capture-index failure is treated as "not found", never as fatal.
func (e *Exporter) Build(ctx context.Context, targets []*models.Target, collections []*models.Collection, subjects []*models.Subject) (*models.ExportResult, error) {
	if targets == nil {
		return nil, ErrMissingDataset{Dataset: "targets"}
	}
	if collections == nil {
		return nil, ErrMissingDataset{Dataset: "collections"}
	}
	if subjects == nil {
		return nil, ErrMissingDataset{Dataset: "subjects"}
	}

	start := e.now()
	counters := models.RunCounters{
		Targets:     len(targets),
		Collections: len(collections),
		Subjects:    len(subjects),
	}

	// Index by identifier, last write wins on duplicates.
	collectionsByID := make(map[int64]*models.Collection, len(collections))
	for _, col := range collections {
		if col == nil {
			continue
		}
		collectionsByID[int64(col.ID)] = col
		if col.Publish {
			counters.CollectionsPublished++
		}
	}
	_ = collectionsByID // indexed as context data; not attached to records

	subjectsByID := make(map[int64]*models.Subject, len(subjects))
	for _, sub := range subjects {
		if sub == nil {
			continue
		}
		subjectsByID[int64(sub.ID)] = sub
		if sub.Publish {
			counters.SubjectsPublished++
		}
	}

	records := make([]*models.PublicationRecord, 0, len(targets))
	for _, target := range targets {
		if target == nil {
			counters.Skipped++
			continue
		}

		if target.CrawlFrequency == crawlFrequencyBlocked {
			slog.Warn("target is blocked", slog.String("title", titleOrPlaceholder(target)))
			counters.Blocked++
			continue
		}

		if len(target.URLs) == 0 {
			slog.Warn("skipping target with no URLs", slog.String("title", titleOrPlaceholder(target)))
			counters.Skipped++
			continue
		}
		canonical := target.URLs[0]

		captured, err := e.index.FirstCapture(ctx, canonical)
		if err != nil {
			slog.Warn("capture index lookup failed",
				slog.String("url", canonical),
				slog.Bool("legal_deposit", target.LegalDeposit),
				slog.Any("error", err),
			)
			counters.Missing++
			continue
		}
		if captured == "" {
			slog.Warn("URL is not yet archived",
				slog.String("url", canonical),
				slog.Bool("legal_deposit", target.LegalDeposit),
			)
			counters.Missing++
			continue
		}

		capturedAt, err := time.Parse(captureTimestampLayout, captured)
		if err != nil {
			slog.Warn("malformed capture timestamp",
				slog.String("url", canonical),
				slog.String("timestamp", captured),
			)
			counters.Missing++
			continue
		}

		if e.now().Sub(capturedAt) <= e.embargo {
			counters.Embargoed++
			continue
		}

		if strings.TrimSpace(target.Title) == "" {
			slog.Warn("skipping target with no title", slog.String("url", canonical))
			counters.Skipped++
			continue
		}

		record := &models.PublicationRecord{
			ID:        recordID(captured, canonical),
			Date:      capturedAt.Format(recordDateLayout),
			URL:       canonical,
			Title:     target.Title,
			Publisher: registrableDomain(canonical),
		}
		if target.OpenAccess {
			record.Rights = rightsOpenAccess
			record.WaybackURL = e.publicPrefix + captured + "/" + canonical
		} else {
			record.Rights = rightsReadingRooms
			record.WaybackURL = e.restrictedPrefix + captured + "/" + canonical
		}
		// The subject's own publish flag is deliberately not consulted
		// here; it only feeds the published-subjects counter.
		if len(target.SubjectIDs) > 0 {
			if sub, ok := subjectsByID[int64(target.SubjectIDs[0])]; ok {
				record.Subject = sub.Name
			}
		}

		counters.Published++
		records = append(records, record)
	}

	return &models.ExportResult{
		Records:   records,
		Counters:  counters,
		StartTime: start,
		EndTime:   e.now(),
	}, nil
}

// recordID derives the stable external identity of a record from its
// first-capture timestamp and canonical URL.
func recordID(timestamp, canonical string) string {
	digest := md5.Sum([]byte(canonical))
	return timestamp + "/" + base64.StdEncoding.EncodeToString(digest[:])
}

// registrableDomain extracts the public-suffix-aware registered domain
// from a URL, e.g. "example.co.uk" from "http://www.example.co.uk/page".
// Hosts with no recognised suffix (IPs, intranet names) fall back to the
// bare hostname.
func registrableDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

func titleOrPlaceholder(target *models.Target) string {
	if strings.TrimSpace(target.Title) == "" {
		return "NO TITLE"
	}
	return target.Title
}
