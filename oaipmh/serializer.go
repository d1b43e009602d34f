// Package oaipmh renders publication records as an OAI-PMH/Dublin-Core
// document. The output is consumed by a library discovery catalogue, so
// element order and namespace declarations must stay byte-stable.
package oaipmh

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ukwa-discovery/title-export/models"
)

const (
	nsOAI   = "http://www.openarchives.org/OAI/2.0/"
	nsOAIDC = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	nsDC    = "http://purl.org/dc/elements/1.1/"
	nsXlink = "http://www.w3.org/1999/xlink"
)

// encoding/xml has no native prefix support, so prefixed names are
// spelled out in the field tags and the declarations pinned on the root.

type document struct {
	XMLName     xml.Name    `xml:"OAI-PMH"`
	NS          string      `xml:"xmlns,attr"`
	NSOaiDC     string      `xml:"xmlns:oai_dc,attr"`
	NSDC        string      `xml:"xmlns:dc,attr"`
	NSXlink     string      `xml:"xmlns:xlink,attr"`
	ListRecords listRecords `xml:"ListRecords"`
}

type listRecords struct {
	Records []record `xml:"record"`
}

type record struct {
	Header   header   `xml:"header"`
	Metadata metadata `xml:"metadata"`
}

type header struct {
	Identifier string `xml:"identifier"`
}

type metadata struct {
	DC dublinCore `xml:"oai_dc:dc"`
}

type dublinCore struct {
	Source    string `xml:"dc:source"`
	Publisher string `xml:"dc:publisher"`
	Title     string `xml:"dc:title"`
	Date      string `xml:"dc:date"`
	Rights    string `xml:"dc:rights"`
	Href      string `xml:"xlink:href"`
	Subject   string `xml:"dc:subject,omitempty"`
}

// Serialize renders records, in the given order, as a pretty-printed
// UTF-8 OAI-PMH document with an XML declaration.
func Serialize(records []*models.PublicationRecord) ([]byte, error) {
	doc := document{
		NS:      nsOAI,
		NSOaiDC: nsOAIDC,
		NSDC:    nsDC,
		NSXlink: nsXlink,
	}

	doc.ListRecords.Records = make([]record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		doc.ListRecords.Records = append(doc.ListRecords.Records, record{
			Header: header{Identifier: rec.ID},
			Metadata: metadata{DC: dublinCore{
				Source:    rec.URL,
				Publisher: rec.Publisher,
				Title:     rec.Title,
				Date:      rec.Date,
				Rights:    rec.Rights,
				Href:      rec.WaybackURL,
				Subject:   rec.Subject,
			}},
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal oai-pmh document: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
