package ingest

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Course scripts are plain text with a metadata header followed by lesson
// markers:
//
//	Course Title: Building Towards Computer Use
//	Course Link: https://...
//	Course Instructor: ...
//
//	Lesson 0: Introduction
//	Lesson Link: https://...
//	<lesson transcript>
//
// Anything before the first lesson marker that is not a header line is
// treated as lesson 0 preamble.
type courseScript struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []courseLesson
}

type courseLesson struct {
	Number  int
	Title   string
	Link    string
	Content string
}

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+)\s*:\s*(.*)$`)

func parseCourseScript(text string) courseScript {
	var script courseScript
	var current *courseLesson
	var body strings.Builder

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(body.String())
			script.Lessons = append(script.Lessons, *current)
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &courseLesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}

		if current == nil {
			switch {
			case strings.HasPrefix(trimmed, "Course Title:"):
				script.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
				continue
			case strings.HasPrefix(trimmed, "Course Link:"):
				script.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
				continue
			case strings.HasPrefix(trimmed, "Course Instructor:"):
				script.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
				continue
			case trimmed == "":
				continue
			default:
				// content before any lesson marker becomes lesson 0
				current = &courseLesson{Number: 0, Title: "Introduction"}
			}
		}

		if current.Link == "" && strings.HasPrefix(trimmed, "Lesson Link:") {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return script
}
