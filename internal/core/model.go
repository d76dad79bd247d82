package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Label is the reviewed compliance label attached to a historical email
type Label string

const (
	LabelCompliant    Label = "compliant"
	LabelNonCompliant Label = "non_compliant"
	LabelUnknown      Label = "unknown"
)

// ParseLabel normalizes a raw label value into a Label
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "compliant":
		return LabelCompliant, true
	case "non_compliant", "noncompliant":
		return LabelNonCompliant, true
	case "unknown", "":
		return LabelUnknown, true
	default:
		return LabelUnknown, false
	}
}

// EmailRecord represents a single email, either a labeled historical
// example or an unlabeled query
type EmailRecord struct {
	ID         string
	Sender     string
	Recipients []string
	Subject    string
	Body       string
	Timestamp  time.Time
	Label      Label
	Category   string
}

// Text returns the searchable text of the email (subject and body)
func (r *EmailRecord) Text() string {
	if strings.TrimSpace(r.Subject) == "" {
		return r.Body
	}
	return r.Subject + " " + r.Body
}

// EnsureID assigns a content-derived identifier when none was supplied.
// The same sender/recipients/subject/body always hash to the same ID, so
// re-ingesting an unchanged record replaces rather than duplicates.
func (r *EmailRecord) EnsureID() string {
	if r.ID != "" {
		return r.ID
	}
	h := sha256.New()
	h.Write([]byte(r.Sender))
	for _, rcpt := range r.Recipients {
		h.Write([]byte{0})
		h.Write([]byte(rcpt))
	}
	h.Write([]byte{0})
	h.Write([]byte(r.Subject))
	h.Write([]byte{0})
	h.Write([]byte(r.Body))
	r.ID = hex.EncodeToString(h.Sum(nil))[:16]
	return r.ID
}

// IndexEntry is a single record stored in the vector index
type IndexEntry struct {
	RecordID  string
	Embedding []float32
	Label     Label
	Category  string
	Sender    string
	Subject   string
	Body      string
}

// Neighbor is a retrieved index entry with its similarity to the query
type Neighbor struct {
	Entry      IndexEntry
	Similarity float64
}

// RetrievalResult is an ordered set of neighbors, most similar first.
// An empty result is valid: it means no history has been indexed yet.
type RetrievalResult []Neighbor

// RecordIDs returns the record IDs of the retrieved neighbors in rank order
func (r RetrievalResult) RecordIDs() []string {
	ids := make([]string, len(r))
	for i, n := range r {
		ids[i] = n.Entry.RecordID
	}
	return ids
}

// Classification is the structured judgment produced by the reasoning
// service for a single query email
type Classification struct {
	Category   string
	Violation  bool
	Reasoning  string
	Evidence   []string
	Confidence int
	ModelUsed  string
}

// RiskTier is the coarse bucket derived from a numeric risk score
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierMedium   RiskTier = "medium"
	TierHigh     RiskTier = "high"
	TierCritical RiskTier = "critical"
)

// Factor is a single named contribution to a risk score
type Factor struct {
	Name   string
	Weight float64
}

// RiskAssessment is the deterministic scoring of a classification
type RiskAssessment struct {
	Score   float64
	Tier    RiskTier
	Factors []Factor
}

// AlertStatus indicates whether an alert carries a full classification or
// degraded to manual review after a pipeline failure
type AlertStatus string

const (
	StatusClassified  AlertStatus = "classified"
	StatusNeedsReview AlertStatus = "needs_review"
)

// Alert is the unit surfaced to the compliance report: one per evaluated
// email, whatever happened during the pipeline
type Alert struct {
	EmailID        string
	Email          EmailRecord
	Status         AlertStatus
	FailureReason  string
	Classification *Classification
	Risk           *RiskAssessment
	Neighbors      RetrievalResult
	EvaluatedAt    time.Time
}

// RecordFailure describes why a single history record was rejected
type RecordFailure struct {
	RecordID string
	Reason   string
}

// IngestSummary reports the outcome of a history ingestion batch
type IngestSummary struct {
	Inserted int
	Replaced int
	Failed   int
	Failures []RecordFailure
}
