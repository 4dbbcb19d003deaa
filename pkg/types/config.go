package types

import "time"

// HTTPConfig holds shared HTTP settings for every outbound request.
type HTTPConfig struct {
	// Timeout is the connection timeout for a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "zenodo-get/1.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of transport-level retries applied to
	// transient failures (connection errors, timeouts, 5xx).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BackoffFactor scales the exponential backoff between transport
	// retries: delay = BackoffFactor * 2^attempt.
	BackoffFactor time.Duration `json:"backoff_factor" yaml:"backoff_factor"`
}

// RunMode selects what a run does with the planned files. The two modes
// are mutually exclusive and chosen once at startup.
type RunMode int

const (
	// ModeTransfer downloads the planned files to the output directory.
	ModeTransfer RunMode = iota

	// ModeURLList writes one download URL per planned file and performs
	// no transfers.
	ModeURLList
)

// DownloadConfig holds settings for a download run.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the target directory, created if absent.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Globs are OR-combined filename patterns; empty means all files.
	Globs []string `json:"globs,omitempty" yaml:"globs,omitempty"`

	// Retry is the number of additional download attempts after a
	// checksum mismatch.
	Retry int `json:"retry" yaml:"retry"`

	// Pause is the wait between checksum-retry attempts.
	Pause time.Duration `json:"pause" yaml:"pause"`

	// ContinueOnError keeps processing remaining files after one fails.
	ContinueOnError bool `json:"continue_on_error" yaml:"continue_on_error"`

	// KeepInvalid retains files that failed checksum verification
	// instead of deleting them.
	KeepInvalid bool `json:"keep_invalid" yaml:"keep_invalid"`

	// StartFresh disables resume: every planned file is downloaded even
	// if a correct copy already exists.
	StartFresh bool `json:"start_fresh" yaml:"start_fresh"`

	// NoClobber disables overwriting existing files. Combined with
	// StartFresh, collisions get a "name(1).ext" style suffix instead.
	NoClobber bool `json:"no_clobber" yaml:"no_clobber"`

	// Sandbox targets the Zenodo sandbox instance.
	Sandbox bool `json:"sandbox" yaml:"sandbox"`

	// AccessToken is an optional Zenodo API token for restricted records.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// Mode selects transfer or URL-list behavior.
	Mode RunMode `json:"-" yaml:"-"`

	// URLListPath is the URL-list destination; "-" means stdout.
	URLListPath string `json:"url_list_path,omitempty" yaml:"url_list_path,omitempty"`

	// MD5Manifest writes an md5sums.txt for verified files after the run.
	MD5Manifest bool `json:"md5_manifest" yaml:"md5_manifest"`

	// SaveMetadata writes a record.yaml metadata sidecar to OutputDir.
	SaveMetadata bool `json:"save_metadata" yaml:"save_metadata"`
}
