package replay

import (
	"os"

	"github.com/wasmdom/wasmdom-go/internal/safefile"
)

// readLastNLines reads the last n non-empty lines of a file by scanning
// backwards in chunks. Lines are returned oldest first.
//
// maxBytes bounds the total bytes read and maxLineBytes a single line;
// 0 means unlimited. Exceeding either returns ErrReplayLimitExceeded.
func readLastNLines(path string, n int, maxBytes int, maxLineBytes int) ([]string, error) {
	file, info, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return lastNLines(file, info.Size(), n, maxBytes, maxLineBytes)
}

func lastNLines(file *os.File, size int64, n int, maxBytes int, maxLineBytes int) ([]string, error) {
	if size == 0 || n <= 0 {
		return nil, nil
	}

	lines := make([]string, 0, n)

	const chunkSize = 4096
	offset := size
	var carry []byte // incomplete line from the previous chunk
	totalBytes := 0

	for len(lines) < n && offset > 0 {
		readSize := int64(chunkSize)
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize

		if maxBytes > 0 && totalBytes+int(readSize)+len(carry) > maxBytes {
			return nil, ErrReplayLimitExceeded
		}

		chunk := make([]byte, readSize)
		if _, err := file.ReadAt(chunk, offset); err != nil {
			return nil, err
		}
		totalBytes += int(readSize)

		// carry follows chunk in file order
		chunk = append(chunk, carry...)

		newLines, newCarry, ok := extractLinesBackward(chunk, n-len(lines), maxLineBytes)
		if !ok {
			return nil, ErrReplayLimitExceeded
		}
		if maxLineBytes > 0 && len(newCarry) > maxLineBytes {
			return nil, ErrReplayLimitExceeded
		}
		if len(newLines) > 0 {
			lines = append(newLines, lines...)
		}
		carry = newCarry
	}

	// First line of the file has no leading newline
	if offset == 0 && len(carry) > 0 && len(lines) < n {
		if line := trimCR(string(carry)); line != "" {
			lines = append([]string{line}, lines...)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// extractLinesBackward returns the complete lines in buffer, oldest first
// and at most maxLines, plus the incomplete prefix before the first
// newline. ok is false when a complete line exceeds maxLineBytes.
func extractLinesBackward(buffer []byte, maxLines int, maxLineBytes int) (lines []string, carry []byte, ok bool) {
	end := len(buffer)
	for i := len(buffer) - 1; i >= 0; i-- {
		if buffer[i] != '\n' {
			continue
		}
		lineBytes := buffer[i+1 : end]
		if maxLineBytes > 0 && len(lineBytes) > maxLineBytes {
			return nil, nil, false
		}
		if line := trimCR(string(lineBytes)); line != "" {
			lines = append([]string{line}, lines...)
		}
		end = i
	}

	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, buffer[:end], true
}

func trimCR(line string) string {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}
