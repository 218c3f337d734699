package config

import "time"

// Data is the actual configuration data for the app
type Data struct {
	CreatedAt time.Time `json:"created_at"`
	LoadedAt  time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Version   int64     `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Log       struct {
		Level    string   `json:"level" enums:"debug,info,warn,error,silent"`
		Topics   []string `json:"topics"`
		MaxLines int      `json:"max_lines"`
	} `json:"log"`
	AccessLog struct {
		Path      string `json:"path"`
		TailLines int    `json:"tail_lines"`
	} `json:"accesslog"`
	Dashboard struct {
		Host    string `json:"host"`
		Path    string `json:"path"`
		Pattern string `json:"pattern"`
	} `json:"dashboard"`
	Check struct {
		Interval         int64  `json:"interval_ms"`
		Schedule         string `json:"schedule"`
		UnpauseThreshold int64  `json:"unpause_threshold_ms"`
		Timeout          int64  `json:"timeout_ms"`
	} `json:"check"`
	FAH struct {
		Address    string `json:"address"`
		GraceDelay int    `json:"grace_delay_ms"`
	} `json:"fah"`
	API struct {
		Enable  bool   `json:"enable"`
		Address string `json:"address"`
	} `json:"api"`
	Metrics struct {
		Enable bool `json:"enable"`
	} `json:"metrics"`
	Debug struct {
		AutoMaxProcs bool   `json:"auto_max_procs"`
		AgentAddress string `json:"agent_address"`
	} `json:"debug"`
}
