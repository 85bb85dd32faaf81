package xmlutils

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

// ErrUnknownMessage is returned when a document is well-formed but is not a
// camt.052/053/054 message.
var ErrUnknownMessage = errors.New("not a recognised camt message")

var namespacePattern = regexp.MustCompile(`xmlns(?::\w+)?="(urn:iso:std:iso:20022:tech:xsd:(camt\.\d{3})\.(\d{3}\.\d{2}))"`)

// Detection describes a sniffed message.
type Detection struct {
	Message      string
	Namespace    string
	Version      string
	MessageID    string
	CreationTime string
	IBAN         string
	Entries      int
	Transactions int
}

// Parse parses r into an xmlpath node tree, decoding non-UTF-8 charsets.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	root, err := xmlpath.ParseDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// DetectMessage identifies the camt message type of data from its group
// element, falling back to the namespace URI.
func DetectMessage(data []byte) (Detection, error) {
	root, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Detection{}, err
	}

	var d Detection
	if m := namespacePattern.FindSubmatch(data); m != nil {
		d.Namespace = string(m[1])
		d.Message = string(m[2])
		d.Version = string(m[3])
	}

	for _, g := range messageGroups {
		if xmlpath.MustCompile(g.xpath).Exists(root) {
			d.Message = g.message
			d.Entries = Count(root, g.entries)
			break
		}
	}
	if d.Message == "" {
		return d, ErrUnknownMessage
	}

	d.MessageID = First(root, XPathMessageID)
	d.CreationTime = First(root, XPathCreationTime)
	d.IBAN = First(root, XPathIBAN)
	d.Transactions = Count(root, XPathTxDetails)
	return d, nil
}

// ExtractFromXML extracts values from an XML node using an XPath expression
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, iter.Node().String())
	}

	return values, nil
}

// First returns the first value matched by xpath, or "".
func First(root *xmlpath.Node, xpath string) string {
	values, err := ExtractFromXML(root, xpath)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// Count returns the number of nodes matched by xpath.
func Count(root *xmlpath.Node, xpath string) int {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return 0
	}
	n := 0
	for iter := path.Iter(root); iter.Next(); {
		n++
	}
	return n
}
