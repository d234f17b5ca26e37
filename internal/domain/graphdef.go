package domain

// GraphDefRecord is one row of a bulk graph definition, the shape produced
// by spreadsheet/config collaborators. The importer turns batches of these
// into function-node registrations; parsing the spreadsheet itself happens
// upstream.
type GraphDefRecord struct {
	Name         string   // human-readable node name; sequence is derived from it
	FunctionType string   // registry tag, e.g. "ratio", "leader_select"
	InputSymbols []string // names of input nodes (raw symbols or earlier records)
	Timeframe    int      // timeframe code, see pkgid
	Threshold    float64  // comparison threshold where the function takes one
	GroupNo      int      // definition group; also the declared layer when > 0
}
