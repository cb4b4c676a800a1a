//go:build windows

package voice

import "os"

func pauseProcess(*os.Process) error {
	return ErrPauseUnsupported
}

func resumeProcess(*os.Process) error {
	return ErrPauseUnsupported
}
