package edgar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// =============================================================================
// FORM D XML PARSING
// =============================================================================
//
// Form D XML carries no namespace; fields are located by path. Every lookup
// is defensive: a missing path or unparseable value degrades to an absent
// field, never an error. Only a document that fails to parse as XML at all
// aborts the record.

// FieldState classifies the outcome of a single field extraction, so tests
// and callers can tell a field that was missing from one that was present
// but malformed.
type FieldState int

const (
	FieldOK FieldState = iota
	FieldAbsent
	FieldMalformed
)

// parseAmount converts a numeric field to a non-negative integer. Values
// like "1500000.0" are accepted by parsing as float then truncating.
func parseAmount(text string) (int64, FieldState) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, FieldAbsent
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil || f < 0 {
		return 0, FieldMalformed
	}
	return int64(f), FieldOK
}

// dateLayouts covers the formats seen in Form D signature and sale dates.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006-01-02T15:04:05",
	"January 2, 2006",
}

// parseFilingDate parses a date permissively.
func parseFilingDate(text string) (time.Time, FieldState) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, FieldAbsent
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, FieldOK
		}
	}
	return time.Time{}, FieldMalformed
}

// ParseFormD parses a raw Form D XML document into a FilingRecord.
// Returns an error only when the document is not well-formed XML.
func ParseFormD(data []byte, cik, accessionNumber string) (*FilingRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse form d xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse form d xml: empty document")
	}

	findText := func(path string) string {
		el := root.FindElement(path)
		if el == nil {
			return ""
		}
		return strings.TrimSpace(el.Text())
	}

	amount := func(path string) *int64 {
		v, state := parseAmount(findText(path))
		if state != FieldOK {
			return nil
		}
		return &v
	}

	record := &FilingRecord{
		AccessionNumber: accessionNumber,
		CIK:             strings.TrimLeft(cik, "0"),
	}

	record.IssuerName = findText("//primaryIssuer/entityName")
	if record.IssuerName == "" {
		record.IssuerName = "Unknown"
	}

	// Amendment iff the submission type carries the /A variant marker.
	record.IsAmendment = strings.Contains(findText("//submissionType"), "/A")

	// The signature date is the most reliable filing date; fall back to
	// today when it is missing, unparseable, or in the future (a filing
	// cannot postdate its retrieval).
	now := time.Now().UTC()
	if t, state := parseFilingDate(findText("//signatureBlock/signature/signatureDate")); state == FieldOK && !t.After(now) {
		record.FilingDate = t
	} else {
		record.FilingDate = now.Truncate(24 * time.Hour)
	}

	record.TotalOfferingAmount = amount("//offeringData/offeringSalesAmounts/totalOfferingAmount")
	record.TotalAmountSold = amount("//offeringData/offeringSalesAmounts/totalAmountSold")
	record.TotalRemaining = amount("//offeringData/offeringSalesAmounts/totalRemaining")
	record.InvestorCount = amount("//offeringData/investors/totalNumberAlreadyInvested")
	record.MinimumInvestment = amount("//offeringData/minimumInvestmentAccepted")
	record.IndustryGroup = findText("//offeringData/industryGroup/industryGroupType")
	record.IssuerState = findText("//primaryIssuer/issuerAddress/stateOrCountry")
	record.IssuerCity = findText("//primaryIssuer/issuerAddress/city")

	if t, state := parseFilingDate(findText("//offeringData/typeOfFiling/dateOfFirstSale/value")); state == FieldOK {
		record.DateOfFirstSale = &t
	}

	record.RelatedPersons = parseRelatedPersons(root)

	return record, nil
}

// parseRelatedPersons collects natural persons from relatedPersonInfo
// blocks. Entries whose name is empty or an "N/A" placeholder are skipped;
// those denote the general-partner entity rather than a person.
func parseRelatedPersons(root *etree.Element) []RelatedPerson {
	var persons []RelatedPerson
	for _, block := range root.FindElements("//relatedPersonInfo") {
		nameEl := block.FindElement("relatedPersonName")
		if nameEl == nil {
			continue
		}
		first := elementText(nameEl, "firstName")
		last := elementText(nameEl, "lastName")
		name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))

		if name == "" || name == "N/A" || strings.HasPrefix(name, "N/A ") {
			continue
		}

		var relationships []string
		if relList := block.FindElement("relatedPersonRelationshipList"); relList != nil {
			for _, rel := range relList.FindElements("relationship") {
				if text := strings.TrimSpace(rel.Text()); text != "" {
					relationships = append(relationships, text)
				}
			}
		}

		persons = append(persons, RelatedPerson{Name: name, Relationships: relationships})
	}
	return persons
}

func elementText(parent *etree.Element, child string) string {
	el := parent.FindElement(child)
	if el == nil {
		return ""
	}
	return el.Text()
}
