package dfxml

import (
	"encoding/xml"
	"io"
)

// Document holds the parts of a DFXML report that ReadDocument understands.
type Document struct {
	XmlOutput        string
	Creator          Creator
	Source           Source
	PartitionSystems []PartitionSystem
}

// ReadDocument parses the <creator>, <source> and <partitionsystem> elements from the reader.
func ReadDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	var doc Document

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		startElem, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch startElem.Name.Local {
		case "dfxml":
			for _, attr := range startElem.Attr {
				if attr.Name.Local == "xmloutputversion" {
					doc.XmlOutput = attr.Value
				}
			}
		case "creator":
			err = dec.DecodeElement(&doc.Creator, &startElem)
		case "source":
			err = dec.DecodeElement(&doc.Source, &startElem)
		case "partitionsystem":
			var ps PartitionSystem
			if err = dec.DecodeElement(&ps, &startElem); err == nil {
				doc.PartitionSystems = append(doc.PartitionSystems, ps)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
