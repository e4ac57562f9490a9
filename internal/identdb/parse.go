package identdb

import (
	"strconv"
	"strings"
)

// eachRecordLine walks data one physical line at a time, skipping
// blank lines and comments but counting them, so ParseError line
// numbers match what an editor shows.
func eachRecordLine(data []byte, fn func(lineNo int, line string) error) error {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	for i, line := range strings.Split(text, "\n") {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		if err := fn(i+1, line); err != nil {
			return err
		}
	}
	return nil
}

// splitRecord splits a record line and enforces the fixed field count
// of its database. A wrong count is a hard error, never silently
// truncated or padded.
func splitRecord(file File, lineNo int, line string, want int) ([]string, error) {
	parts := strings.Split(line, ":")
	if len(parts) != want {
		return nil, &ParseError{
			File:   file,
			Line:   lineNo,
			Reason: "wrong field count: got " + strconv.Itoa(len(parts)) + ", want " + strconv.Itoa(want),
		}
	}
	return parts, nil
}

func parseID(file File, lineNo int, field, name string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 {
		return 0, &ParseError{File: file, Line: lineNo, Reason: "invalid " + name + ": " + strconv.Quote(field)}
	}
	return n, nil
}

// parseDay parses a shadow aging field. An empty field means the value
// is unset, which is distinct from 0 (the epoch day itself).
func parseDay(file File, lineNo int, field, name string) (Day, error) {
	if field == "" {
		return DayUnset, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 {
		return DayUnset, &ParseError{File: file, Line: lineNo, Reason: "invalid " + name + ": " + strconv.Quote(field)}
	}
	return Day(n), nil
}

func splitNameList(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ",")
}

func ParsePasswd(data []byte) ([]UserRecord, error) {
	var out []UserRecord
	seen := map[string]bool{}
	err := eachRecordLine(data, func(lineNo int, line string) error {
		parts, err := splitRecord(FilePasswd, lineNo, line, 7)
		if err != nil {
			return err
		}
		if seen[parts[0]] {
			return &ParseError{File: FilePasswd, Line: lineNo, Reason: "duplicate user name " + strconv.Quote(parts[0])}
		}
		seen[parts[0]] = true
		uid, err := parseID(FilePasswd, lineNo, parts[2], "uid")
		if err != nil {
			return err
		}
		gid, err := parseID(FilePasswd, lineNo, parts[3], "gid")
		if err != nil {
			return err
		}
		out = append(out, UserRecord{
			Name:   parts[0],
			Passwd: parts[1],
			UID:    uid,
			GID:    gid,
			Gecos:  parts[4],
			Home:   parts[5],
			Shell:  parts[6],
		})
		return nil
	})
	return out, err
}

func ParseShadow(data []byte) ([]ShadowRecord, error) {
	var out []ShadowRecord
	seen := map[string]bool{}
	err := eachRecordLine(data, func(lineNo int, line string) error {
		parts, err := splitRecord(FileShadow, lineNo, line, 9)
		if err != nil {
			return err
		}
		if seen[parts[0]] {
			return &ParseError{File: FileShadow, Line: lineNo, Reason: "duplicate shadow entry " + strconv.Quote(parts[0])}
		}
		seen[parts[0]] = true
		rec := ShadowRecord{Name: parts[0], Hash: parts[1], Reserved: parts[8]}
		for _, f := range []struct {
			dst  *Day
			val  string
			name string
		}{
			{&rec.LastChange, parts[2], "last-change day"},
			{&rec.MinDays, parts[3], "min days"},
			{&rec.MaxDays, parts[4], "max days"},
			{&rec.WarnDays, parts[5], "warn days"},
			{&rec.InactiveDays, parts[6], "inactive days"},
			{&rec.ExpireDay, parts[7], "expire day"},
		} {
			d, err := parseDay(FileShadow, lineNo, f.val, f.name)
			if err != nil {
				return err
			}
			*f.dst = d
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func ParseGroup(data []byte) ([]GroupRecord, error) {
	var out []GroupRecord
	seen := map[string]bool{}
	err := eachRecordLine(data, func(lineNo int, line string) error {
		parts, err := splitRecord(FileGroup, lineNo, line, 4)
		if err != nil {
			return err
		}
		if seen[parts[0]] {
			return &ParseError{File: FileGroup, Line: lineNo, Reason: "duplicate group name " + strconv.Quote(parts[0])}
		}
		seen[parts[0]] = true
		gid, err := parseID(FileGroup, lineNo, parts[2], "gid")
		if err != nil {
			return err
		}
		out = append(out, GroupRecord{
			Name:    parts[0],
			Passwd:  parts[1],
			GID:     gid,
			Members: splitNameList(parts[3]),
		})
		return nil
	})
	return out, err
}

func ParseGShadow(data []byte) ([]ShadowGroupRecord, error) {
	var out []ShadowGroupRecord
	seen := map[string]bool{}
	err := eachRecordLine(data, func(lineNo int, line string) error {
		parts, err := splitRecord(FileGShadow, lineNo, line, 4)
		if err != nil {
			return err
		}
		if seen[parts[0]] {
			return &ParseError{File: FileGShadow, Line: lineNo, Reason: "duplicate gshadow entry " + strconv.Quote(parts[0])}
		}
		seen[parts[0]] = true
		out = append(out, ShadowGroupRecord{
			Name:    parts[0],
			Hash:    parts[1],
			Admins:  splitNameList(parts[2]),
			Members: splitNameList(parts[3]),
		})
		return nil
	})
	return out, err
}
