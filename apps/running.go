// Package apps reports running and frontmost desktop applications.
package apps

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
	"github.com/shirou/gopsutil/v4/process"
)

// processInfo is what we read from each process before filtering.
type processInfo struct {
	PID  int32
	Name string
	Exe  string
}

type processSource func(ctx context.Context) ([]processInfo, error)

func systemProcesses(ctx context.Context) ([]processInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	out := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		// kernel threads and other users' processes have no readable exe
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			continue
		}
		out = append(out, processInfo{PID: p.Pid, Name: name, Exe: exe})
	}
	return out, nil
}

// ListRunning returns one entry per application name, sorted by name.
// On macOS only processes inside an .app bundle are reported, named
// from the bundle's Info.plist.
func ListRunning(ctx context.Context) ([]types.AppInfo, error) {
	return listRunning(ctx, systemProcesses, runtime.GOOS)
}

func listRunning(ctx context.Context, source processSource, goos string) ([]types.AppInfo, error) {
	procs, err := source(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]types.AppInfo)
	for _, p := range procs {
		app, ok := describe(p, goos)
		if !ok {
			continue
		}
		key := strings.ToLower(app.Name)
		if existing, dup := seen[key]; dup && existing.PID <= app.PID {
			continue
		}
		seen[key] = app
	}

	out := make([]types.AppInfo, 0, len(seen))
	for _, app := range seen {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// describe turns a process into an application entry. The lowest pid
// wins for duplicate names, which is usually the main process.
func describe(p processInfo, goos string) (types.AppInfo, bool) {
	app := types.AppInfo{Name: p.Name, Path: p.Exe, PID: p.PID}
	if goos != "darwin" {
		return app, true
	}

	bundle := utils.BundlePath(p.Exe)
	if bundle == "" {
		return app, false
	}
	app.Path = bundle
	app.Name = strings.TrimSuffix(filepath.Base(bundle), ".app")

	info, err := utils.ReadBundleInfo(bundle)
	if err != nil {
		utils.Verbose("no Info.plist for %s: %v", bundle, err)
		return app, true
	}
	if title := info.Title(); title != "" {
		app.Name = title
	}
	app.BundleID = info.Identifier
	return app, true
}

// resolvePID looks up a single process.
func resolvePID(ctx context.Context, pid int32, goos string) (types.AppInfo, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return types.AppInfo{}, fmt.Errorf("process %d: %w", pid, err)
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return types.AppInfo{}, fmt.Errorf("process %d name: %w", pid, err)
	}
	exe, _ := p.ExeWithContext(ctx)

	app, ok := describe(processInfo{PID: pid, Name: name, Exe: exe}, goos)
	if !ok {
		// frontmost process outside a bundle; report it as-is
		app = types.AppInfo{Name: name, Path: exe, PID: pid}
	}
	return app, nil
}
