package scans

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ScanID tipe untuk Scan
type ScanID string

// DefaultScanID dipakai kalau caller tidak kasih id
const DefaultScanID ScanID = "test-001"

const (
	vulnerabilitiesKey = "vulnerabilities"
	analysisKey        = "aiAnalysis"
)

var (
	ErrInvalidJSON        = errors.New("scan body is not valid JSON")
	ErrNotObject          = errors.New("scan body is not a JSON object")
	ErrNoVulnerabilities  = errors.New(`scan body has no "vulnerabilities" field`)
	ErrVulnerabilitiesArr = errors.New(`scan "vulnerabilities" field is not an array`)
	ErrMissingTitle       = errors.New(`vulnerability has no "title" field`)
)

// Scan is the document returned by the scan API. It is kept as raw JSON and
// edited by path so that key order and fields this package does not know
// about survive the round trip untouched.
type Scan struct {
	ID  ScanID
	doc []byte
}

// ParseScan validates body and wraps it as a Scan.
func ParseScan(id ScanID, body []byte) (*Scan, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("scan %s: %w", id, ErrInvalidJSON)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("scan %s: %w", id, ErrNotObject)
	}
	list := root.Get(vulnerabilitiesKey)
	if !list.Exists() {
		return nil, fmt.Errorf("scan %s: %w", id, ErrNoVulnerabilities)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("scan %s: %w", id, ErrVulnerabilitiesArr)
	}
	for i, v := range list.Array() {
		if !v.IsObject() {
			return nil, fmt.Errorf("scan %s: vulnerability %d is not an object", id, i)
		}
	}

	doc := make([]byte, len(body))
	copy(doc, body)
	return &Scan{ID: id, doc: doc}, nil
}

// Vulnerabilities returns the entries in document order.
func (s *Scan) Vulnerabilities() []Vulnerability {
	items := gjson.GetBytes(s.doc, vulnerabilitiesKey).Array()
	out := make([]Vulnerability, 0, len(items))
	for i, it := range items {
		out = append(out, Vulnerability{
			ScanID: s.ID,
			Index:  i,
			raw:    []byte(it.Raw),
		})
	}
	return out
}

// Attach sets aiAnalysis on the vulnerability at v.Index. An existing
// aiAnalysis key is replaced where it stands; otherwise it becomes the last key.
func (s *Scan) Attach(v Vulnerability, res AnalysisResult) error {
	count := int(gjson.GetBytes(s.doc, vulnerabilitiesKey+".#").Int())
	if v.Index < 0 || v.Index >= count {
		return fmt.Errorf("scan %s: vulnerability index %d out of range (%d)", s.ID, v.Index, count)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	path := vulnerabilitiesKey + "." + strconv.Itoa(v.Index) + "." + analysisKey
	doc, err := sjson.SetRawBytes(s.doc, path, raw)
	if err != nil {
		return fmt.Errorf("scan %s: attach analysis to vulnerability %d: %w", s.ID, v.Index, err)
	}
	s.doc = doc
	return nil
}

// Bytes returns the current document. Callers must not modify it.
func (s *Scan) Bytes() []byte { return s.doc }

// Get reads an arbitrary field of the scan by gjson path.
func (s *Scan) Get(path string) gjson.Result { return gjson.GetBytes(s.doc, path) }

// Vulnerability is one finding inside a Scan.
type Vulnerability struct {
	ScanID ScanID
	Index  int
	raw    []byte
}

// NewVulnerability builds a detached Vulnerability from raw JSON, mostly for tests
// and for analyzers that receive findings from elsewhere.
func NewVulnerability(scanID ScanID, index int, raw []byte) Vulnerability {
	return Vulnerability{ScanID: scanID, Index: index, raw: raw}
}

func (v Vulnerability) Raw() []byte                  { return v.raw }
func (v Vulnerability) Get(path string) gjson.Result { return gjson.GetBytes(v.raw, path) }

func (v Vulnerability) Title() string       { return v.Get("title").String() }
func (v Vulnerability) HasTitle() bool      { return v.Get("title").Exists() }
func (v Vulnerability) Severity() string    { return strings.ToLower(v.Get("severity").String()) }
func (v Vulnerability) Type() string        { return v.Get("type").String() }
func (v Vulnerability) Source() string      { return v.Get("source").String() }
func (v Vulnerability) Package() string     { return v.Get("package").String() }
func (v Vulnerability) Description() string { return v.Get("description").String() }
func (v Vulnerability) FixAvailable() bool  { return v.Get("fixAvailable").Bool() }
func (v Vulnerability) CVSS() float64       { return v.Get("cvss").Float() }
