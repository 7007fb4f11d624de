package model

// Capture is one intercepted network response handed over by the browser
// session driver
type Capture struct {
	URL  string `json:"url"`
	Body *Node  `json:"-"`
}

// Source describes where captured responses are read from
type Source struct {
	Type string `json:"type" yaml:"type"` // dir, file, url
	URL  string `json:"url" yaml:"url"`   // directory, file path or endpoint
}

// RawRecord is a candidate daily record found by the record miner
type RawRecord struct {
	Date   *Node `json:"-"`
	Volume *Node `json:"-"`
	Cost   *Node `json:"-"` // optional
	Unit   *Node `json:"-"` // optional
	Source *Node `json:"-"` // mapping the record was found in
}
