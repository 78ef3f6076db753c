package storage

import (
	"bufio"
	"fmt"
	"os"
)

// rotatingWriter owns one output stream that rotates to a new sequentially
// numbered file whenever the previous one's line count exceeds a soft cap.
// Rotation is checked once per batch (not mid-batch), matching the "soft"
// cap contract: a write that begins below the cap may push it over, but the
// next write starts a new file.
type rotatingWriter struct {
	dir        string
	namePrefix string
	runNumber  string
	softCap    int
	header     string

	seq       int
	lineCount int
	file      *os.File
	w         *bufio.Writer

	onRotate func()
}

func newRotatingWriter(dir, namePrefix, runNumber string, softCap int, header string, onRotate func()) *rotatingWriter {
	return &rotatingWriter{
		dir:        dir,
		namePrefix: namePrefix,
		runNumber:  runNumber,
		softCap:    softCap,
		header:     header,
		onRotate:   onRotate,
	}
}

// rotateIfNeeded opens a new file on the first call, or whenever the current
// file's line count has exceeded the soft cap.
func (rw *rotatingWriter) rotateIfNeeded() error {
	if rw.file != nil && rw.lineCount <= rw.softCap {
		return nil
	}
	if rw.file != nil {
		rw.w.Flush()
		rw.file.Close()
	}

	name := fmt.Sprintf("%s_RN-%s_FN-%d.txt", rw.namePrefix, rw.runNumber, rw.seq)
	f, err := os.Create(rw.dir + "/" + name)
	if err != nil {
		return err
	}
	rw.file = f
	rw.w = bufio.NewWriter(f)
	rw.w.WriteString(rw.header)
	rw.lineCount = 0
	rw.seq++
	if rw.onRotate != nil {
		rw.onRotate()
	}
	return nil
}

// WriteLines rotates if needed, then appends every line (each already
// newline-terminated), counting them toward the soft cap.
func (rw *rotatingWriter) WriteLines(lines []string) error {
	if err := rw.rotateIfNeeded(); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := rw.w.WriteString(line); err != nil {
			return err
		}
	}
	rw.lineCount += len(lines)
	return rw.w.Flush()
}

func (rw *rotatingWriter) Close() error {
	if rw.file == nil {
		return nil
	}
	rw.w.Flush()
	return rw.file.Close()
}
