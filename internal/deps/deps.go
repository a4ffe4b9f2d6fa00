package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of an external tool
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
}

// CheckPwRecord checks for pw-record, which captures microphone audio
func CheckPwRecord() Status {
	return check("pw-record", "--version")
}

// CheckPwCli checks for pw-cli, used to probe the PipeWire daemon
func CheckPwCli() Status {
	return check("pw-cli", "--version")
}

// CheckNotifySend checks for notify-send, used by desktop notifications
func CheckNotifySend() Status {
	return check("notify-send", "--version")
}

// All returns the status of every external tool hyprnote can use
func All() []Status {
	return []Status{CheckPwRecord(), CheckPwCli(), CheckNotifySend()}
}

func check(name string, versionArgs ...string) Status {
	path, err := exec.LookPath(name)
	if err != nil {
		return Status{Name: name, Installed: false}
	}

	status := Status{
		Name:      name,
		Installed: true,
		Path:      path,
	}

	output, err := exec.Command(path, versionArgs...).Output()
	if err == nil {
		// first non-empty line carries the version
		for _, line := range strings.Split(string(output), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				status.Version = line
				break
			}
		}
	}

	return status
}
