package nsapi

import "encoding/xml"

// #region shard-types
// Response shapes of the NationStates XML API. Repeated elements decode into
// slices, so a single issue or policy needs no special casing.

type nationResponse struct {
	XMLName  xml.Name      `xml:"NATION"`
	ID       string        `xml:"id,attr"`
	Issues   []xmlIssue    `xml:"ISSUES>ISSUE"`
	Policies []xmlPolicy   `xml:"POLICIES>POLICY"`
	Census   []xmlScale    `xml:"CENSUS>SCALE"`
	Issue    *xmlIssueDone `xml:"ISSUE"`
}

type xmlIssue struct {
	ID      int         `xml:"id,attr"`
	Title   string      `xml:"TITLE"`
	Options []xmlOption `xml:"OPTION"`
}

type xmlOption struct {
	ID   int    `xml:"id,attr"`
	Text string `xml:",chardata"`
}

type xmlPolicy struct {
	Name     string `xml:"NAME"`
	Category string `xml:"CAT"`
}

type xmlScale struct {
	ID     int        `xml:"id,attr"`
	Points []xmlPoint `xml:"POINT"`
}

type xmlPoint struct {
	Timestamp int64   `xml:"TIMESTAMP"`
	Score     float64 `xml:"SCORE"`
}

// #endregion shard-types

// #region command-types
// xmlIssueDone is the reply to an issue command.
type xmlIssueDone struct {
	ID              int         `xml:"id,attr"`
	Choice          int         `xml:"choice,attr"`
	OK              string      `xml:"OK"`
	Error           string      `xml:"ERROR"`
	Rankings        []xmlRank   `xml:"RANKINGS>RANK"`
	NewPolicies     []xmlPolicy `xml:"NEW_POLICIES>POLICY"`
	RemovedPolicies []xmlPolicy `xml:"REMOVED_POLICIES>POLICY"`
}

type xmlRank struct {
	ID     int     `xml:"id,attr"`
	Score  float64 `xml:"SCORE"`
	Change float64 `xml:"CHANGE"`
}

// #endregion command-types
