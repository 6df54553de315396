package crawl

import (
	"fmt"

	"github.com/fwojciec/pagechunk"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// FormatProgress renders one progress line for a finished URL.
func FormatProgress(p pagechunk.IngestProgress, maxURL int) string {
	status := "ok"
	switch {
	case p.Error != nil:
		status = "failed: " + pagechunk.ErrorMessage(p.Error)
	case p.Unchanged:
		status = "unchanged"
	}
	return fmt.Sprintf("[%d/%d] %s %s", p.Completed, p.Total, TruncateURL(p.URL, maxURL), status)
}
