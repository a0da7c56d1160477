package calibrator

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// calibTokenizer walks a whitespace separated calibration file token by
// token. Records may span several lines, as the bin width file does.
type calibTokenizer struct {
	scanner  *bufio.Scanner
	filename string
	fields   []string
	line     int
}

func newCalibTokenizer(r io.Reader, filename string) *calibTokenizer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &calibTokenizer{scanner: scanner, filename: filename}
}

// next returns false at the end of the input.
func (t *calibTokenizer) next() (string, bool, error) {
	for len(t.fields) == 0 {
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); err != nil {
				return "", false, &ErrParseCalib{Filename: t.filename, Line: t.line, Err: err}
			}
			return "", false, nil
		}
		t.line++
		t.fields = strings.Fields(t.scanner.Text())
	}
	token := t.fields[0]
	t.fields = t.fields[1:]
	return token, true, nil
}

func (t *calibTokenizer) nextInt() (int, bool, error) {
	token, ok, err := t.next()
	if !ok || err != nil {
		return 0, ok, err
	}
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, true, &ErrParseCalib{Filename: t.filename, Line: t.line, Err: err}
	}
	return value, true, nil
}

func (t *calibTokenizer) nextFloat() (float64, bool, error) {
	token, ok, err := t.next()
	if !ok || err != nil {
		return 0, ok, err
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, true, &ErrParseCalib{Filename: t.filename, Line: t.line, Err: err}
	}
	return value, true, nil
}

// mustFloat reads a value that has to be there because a record started.
func (t *calibTokenizer) mustFloat() (float64, error) {
	value, ok, err := t.nextFloat()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ErrParseCalib{Filename: t.filename, Line: t.line, Err: io.ErrUnexpectedEOF}
	}
	return value, nil
}

func (t *calibTokenizer) mustInt() (int, error) {
	value, ok, err := t.nextInt()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ErrParseCalib{Filename: t.filename, Line: t.line, Err: io.ErrUnexpectedEOF}
	}
	return value, nil
}
