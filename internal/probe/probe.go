// Package probe snapshots the system process tree once per poll and
// answers ancestor/descendant command-name questions for a pane's pid.
// Generalizes the per-tool raw `ps -eo pid,ppid,comm,args` parsing into a
// portable snapshot via gopsutil, so match evidence works the same way
// on Linux, macOS, and (incidentally) Windows.
package probe

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Table is a point-in-time snapshot of the process tree. Lifecycle:
// initialized lazily on first Refresh, refreshed once per poll, never
// destroyed — confine access to the monitor task to avoid locking.
type Table struct {
	children map[int32][]int32
	comm     map[int32]string
	args     map[int32]string
}

// Refresh rebuilds the table from the current process list.
func Refresh() Table {
	t := Table{
		children: make(map[int32][]int32),
		comm:     make(map[int32]string),
		args:     make(map[int32]string),
	}
	procs, err := process.Processes()
	if err != nil {
		return t
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		t.comm[p.Pid] = name
		t.children[ppid] = append(t.children[ppid], p.Pid)
		if cmdline, err := p.Cmdline(); err == nil {
			t.args[p.Pid] = cmdline
		}
	}
	return t
}

func basename(comm string) string {
	if idx := strings.LastIndex(comm, "/"); idx >= 0 {
		return comm[idx+1:]
	}
	return comm
}

// Ancestors returns command names from pid's parent up to the root,
// ordered nearest-first. Not used directly for root->leaf ordering; see
// AncestorsRootFirst for the match-evidence order described in §3.
func (t Table) Ancestors(pid int32) []string {
	ppidOf := make(map[int32]int32, len(t.children))
	for ppid, kids := range t.children {
		for _, k := range kids {
			ppidOf[k] = ppid
		}
	}
	var names []string
	cur := pid
	for i := 0; i < 64; i++ {
		parent, ok := ppidOf[cur]
		if !ok || parent == 0 || parent == cur {
			break
		}
		if name, ok := t.comm[parent]; ok {
			names = append(names, basename(name))
		}
		cur = parent
	}
	return names
}

// AncestorsRootFirst returns the ordered ancestor command-name sequence
// root->leaf, as PaneRecord.Ancestors expects.
func (t Table) AncestorsRootFirst(pid int32) []string {
	names := t.Ancestors(pid)
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// Descendants returns every descendant command name of pid (children,
// grandchildren, ...), unordered.
func (t Table) Descendants(pid int32) []string {
	var names []string
	var walk func(int32)
	walk = func(p int32) {
		for _, child := range t.children[p] {
			if name, ok := t.comm[child]; ok {
				names = append(names, basename(name))
			}
			walk(child)
		}
	}
	walk(pid)
	return names
}

// HasDescendant reports whether any descendant of pid matches name.
func (t Table) HasDescendant(pid int32, name string) bool {
	for _, d := range t.Descendants(pid) {
		if d == name {
			return true
		}
	}
	return false
}

// ChildCommand returns the first child process's command basename, or ""
// if pid has no children. Used to resolve agents that run under a
// generic shell but exec a registered binary as a direct child.
func (t Table) ChildCommand(pid int32) string {
	for _, child := range t.children[pid] {
		if name, ok := t.comm[child]; ok {
			return basename(name)
		}
	}
	return ""
}

// ChildCommands returns the command basenames of every direct child of pid.
func (t Table) ChildCommands(pid int32) []string {
	var out []string
	for _, child := range t.children[pid] {
		if name, ok := t.comm[child]; ok {
			out = append(out, basename(name))
		}
	}
	return out
}

// ChildArgTokens returns the whitespace-split argv tokens of every direct
// child of pid, basenamed. Used to resolve script-run tools (e.g. a
// Node-based CLI invoked as "node /opt/homebrew/bin/gemini").
func (t Table) ChildArgTokens(pid int32) []string {
	var out []string
	for _, child := range t.children[pid] {
		for tok := range strings.SplitSeq(t.args[child], " ") {
			if tok == "" {
				continue
			}
			out = append(out, basename(tok))
		}
	}
	return out
}
