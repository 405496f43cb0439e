package cfg

// Cfg is the resolved process configuration: global options plus the active
// command and its arguments. Output title, link, and the synthesis policy
// live in the persisted store document, not here.
type Cfg struct {
	DBPath      string
	SourcesFile string
	MediaDir    string
	UserAgent   string
	Timeout     int
	WorkerCount int
	Debug       bool
	Version     string

	// Active command ("fetch" or "publish") and its arguments
	Command    string
	URLs       []string
	OutputPath string
	HostPrefix string
}
