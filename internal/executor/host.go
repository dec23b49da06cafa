package executor

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/akozyrev/deskmate/internal/action"
)

// Host executes actions against the local machine. File and process actions
// run for real; window-management kinds need a desktop session and report
// ErrUnsupported here, which surfaces as a failed task rather than a crash.
type Host struct {
	// WorkDir roots relative file paths. Empty means the process working
	// directory.
	WorkDir string
}

func NewHost(workDir string) *Host {
	return &Host{WorkDir: workDir}
}

func (h *Host) Execute(ctx context.Context, a action.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch a.Kind {
	case action.KindMultiStep:
		return h.executeSteps(ctx, a.Steps)
	case action.KindUnknown:
		return unknownError(a.Hint)
	case action.KindLaunchApplication:
		return h.launch(ctx, a.App)
	case action.KindCreateFile:
		return h.createFile(a.Name)
	case action.KindDeleteFile:
		return h.deleteFile(a.Name)
	case action.KindCreateDirectory:
		return h.createDirectory(a.Name)
	case action.KindDeleteDirectory:
		return h.deleteDirectory(a.Name)
	case action.KindFileOperation:
		return h.fileOperation(a)
	case action.KindScreenshot, action.KindKeyPress, action.KindScroll:
		return fmt.Errorf("%w: %s", ErrUnsupported, a.Kind)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, a.Kind)
	}
}

// executeSteps runs composite steps strictly in order and stops at the first
// failure, reporting which step broke.
func (h *Host) executeSteps(ctx context.Context, steps []action.Action) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.Execute(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Summary(), err)
		}
	}
	return nil
}

func (h *Host) launch(ctx context.Context, app string) error {
	if app == "" {
		return fmt.Errorf("launch: application name is empty")
	}
	cmd := exec.CommandContext(ctx, app)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", app, err)
	}
	log.Printf("launched %s (pid %d)", app, cmd.Process.Pid)
	// Detach: the task completes once the process is started, not when it
	// exits. Reap it in the background to avoid a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

func (h *Host) createFile(name string) error {
	path, err := h.resolve(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create file %s: %w", name, err)
	}
	return f.Close()
}

func (h *Host) deleteFile(name string) error {
	path, err := h.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

func (h *Host) createDirectory(name string) error {
	path, err := h.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", name, err)
	}
	return nil
}

func (h *Host) deleteDirectory(name string) error {
	path, err := h.resolve(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete directory %s: %w", name, err)
	}
	return nil
}

func (h *Host) fileOperation(a action.Action) error {
	switch a.Operation {
	case "open":
		path, err := h.resolve(a.File)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("open file %s: %w", a.File, err)
		}
		return nil
	case "copy":
		return h.copyFile(a.File, a.Destination)
	case "move", "rename":
		src, err := h.resolve(a.File)
		if err != nil {
			return err
		}
		dst, err := h.resolve(a.Destination)
		if err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("%s file %s: %w", a.Operation, a.File, err)
		}
		return nil
	case "delete":
		return h.deleteFile(a.File)
	default:
		return fmt.Errorf("file operation %q is not recognized", a.Operation)
	}
}

func (h *Host) copyFile(name, destination string) error {
	src, err := h.resolve(name)
	if err != nil {
		return err
	}
	dst, err := h.resolve(destination)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy file %s: %w", name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("copy file to %s: %w", destination, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy file %s: %w", name, err)
	}
	return out.Close()
}

func (h *Host) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is empty")
	}
	if filepath.IsAbs(name) || h.WorkDir == "" {
		return name, nil
	}
	return filepath.Join(h.WorkDir, name), nil
}
