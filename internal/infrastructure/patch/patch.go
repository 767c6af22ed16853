// Package patch turns a unified diff into per-file before/after contents so
// each file can go through change validation.
package patch

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// FileChange is one file of a patch with its full old and new contents.
type FileChange struct {
	Path    string
	OldCode string
	NewCode string
	Created bool
	Deleted bool
	// Partial is set when the original file was unavailable and both sides
	// were rebuilt from hunk context alone.
	Partial bool
}

// ReadFunc loads the current contents of a patched path. ok is false when the
// file cannot be read.
type ReadFunc func(path string) (data []byte, ok bool)

// Parse splits a multi-file unified diff. read may be nil.
func Parse(data []byte, read ReadFunc) ([]FileChange, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []FileChange{}, nil
	}
	fileDiffs, err := godiff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	changes := make([]FileChange, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		changes = append(changes, build(fd, read))
	}
	return changes, nil
}

func build(fd *godiff.FileDiff, read ReadFunc) FileChange {
	change := FileChange{
		Path:    cleanPath(fd.NewName),
		Created: fd.OrigName == devNull,
		Deleted: fd.NewName == devNull,
	}
	if change.Deleted {
		change.Path = cleanPath(fd.OrigName)
	}

	var original []byte
	ok := false
	if read != nil && !change.Created {
		original, ok = read(change.Path)
	}

	switch {
	case change.Created:
		change.NewCode = joinSide(fd.Hunks, '+')
	case ok:
		change.OldCode = string(original)
		if !change.Deleted {
			change.NewCode = apply(string(original), fd.Hunks)
		}
	default:
		change.Partial = true
		change.OldCode = joinSide(fd.Hunks, '-')
		if !change.Deleted {
			change.NewCode = joinSide(fd.Hunks, '+')
		}
	}
	return change
}

// apply replays hunks over original by their original start lines.
func apply(original string, hunks []*godiff.Hunk) string {
	origLines := strings.Split(original, "\n")
	out := make([]string, 0, len(origLines))
	idx := 0
	for _, hunk := range hunks {
		start := int(hunk.OrigStartLine) - 1
		for idx < start && idx < len(origLines) {
			out = append(out, origLines[idx])
			idx++
		}
		for _, line := range bodyLines(hunk) {
			switch {
			case strings.HasPrefix(line, "+"):
				out = append(out, line[1:])
			case strings.HasPrefix(line, "-"):
				idx++
			case strings.HasPrefix(line, "\\"):
			default:
				if idx < len(origLines) {
					out = append(out, origLines[idx])
					idx++
				}
			}
		}
	}
	out = append(out, origLines[min(idx, len(origLines)):]...)
	return strings.Join(out, "\n")
}

// joinSide rebuilds one side of the change from hunk bodies: '-' keeps context
// and removed lines, '+' keeps context and added lines.
func joinSide(hunks []*godiff.Hunk, side byte) string {
	var lines []string
	for _, hunk := range hunks {
		for _, line := range bodyLines(hunk) {
			if line == "" {
				lines = append(lines, "")
				continue
			}
			switch line[0] {
			case ' ':
				lines = append(lines, line[1:])
			case side:
				lines = append(lines, line[1:])
			}
		}
	}
	return strings.Join(lines, "\n")
}

func bodyLines(hunk *godiff.Hunk) []string {
	body := strings.TrimSuffix(string(hunk.Body), "\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

func cleanPath(name string) string {
	name = strings.TrimPrefix(name, "a/")
	name = strings.TrimPrefix(name, "b/")
	return name
}
