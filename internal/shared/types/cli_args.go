package types

// CLIArgs represents the command-line arguments.
// Zero values mean "not set on the command line"; MinSavings is a pointer because
// zero is a meaningful threshold.
type CLIArgs struct {
	ConfigFile      string
	APIKey          string
	Dimension       int
	TagKey          string
	MinSavings      *float64
	Limit           int
	JiraURL         string
	JiraUser        string
	JiraPassword    string
	ProjectKey      string
	SavingsField    string
	DryRun          bool
	VerifyInstances bool
	AWSProfile      string
	Regions         []string
	ReportName      string
	ReportType      []string
	Dir             string
	Debug           bool
}
