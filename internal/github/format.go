package github

import (
	"fmt"
	"strings"

	"github-topic-bot/internal/markup"

	"github.com/google/go-github/v80/github"
)

const (
	mergeCommitPrefix = "Merge pull request #"
	maxCommitLines    = 10
)

// FormatPushEvent renders a push event as MarkdownV2 text. Pushes whose
// first merge-shaped commit message starts with mergeCommitPrefix are
// rendered as a merged pull request, everything else as a plain push.
func FormatPushEvent(event *github.PushEvent) string {
	repo := event.GetRepo().GetFullName()
	branch := strings.TrimPrefix(event.GetRef(), "refs/heads/")
	pusher := event.GetPusher().GetName()
	commits := event.Commits

	mergeIdx := -1
	for i, commit := range commits {
		if strings.HasPrefix(commit.GetMessage(), mergeCommitPrefix) {
			mergeIdx = i
			break
		}
	}

	var msg string
	if mergeIdx >= 0 {
		merge := commits[mergeIdx]
		title, body := splitCommitMessage(merge.GetMessage())

		msg = fmt.Sprintf(
			"🔀 *PR Merged to %s*\n"+
				"🌿 Branch: %s\n"+
				"👤 Merged by: *%s*\n\n"+
				"📝 %s\n",
			markup.Escape(repo),
			markup.Code(branch),
			markup.Escape(pusher),
			markup.Escape(title),
		)
		if body != "" {
			for _, line := range strings.Split(body, "\n") {
				msg += ">" + markup.Escape(line) + "\n"
			}
		}

		others := make([]*github.HeadCommit, 0, len(commits)-1)
		others = append(others, commits[:mergeIdx]...)
		others = append(others, commits[mergeIdx+1:]...)

		msg += fmt.Sprintf("\n*Changes \\(%d commits\\):*\n", len(others))
		msg += formatCommitList(others)
	} else {
		msg = fmt.Sprintf(
			"🔔 *New Push to %s*\n"+
				"🌿 Branch: %s\n"+
				"👤 Pushed by: *%s*\n"+
				"📦 Commits: %d\n\n",
			markup.Escape(repo),
			markup.Code(branch),
			markup.Escape(pusher),
			len(commits),
		)
		msg += formatCommitList(commits)
	}

	msg += "\n🔗 " + markup.Link("View Changes", event.GetCompare())
	return msg
}

// splitCommitMessage separates a commit message into its first line and
// the trimmed remainder.
func splitCommitMessage(message string) (string, string) {
	first, rest, found := strings.Cut(message, "\n")
	if !found {
		return message, ""
	}
	return first, strings.TrimSpace(rest)
}

func formatCommitList(commits []*github.HeadCommit) string {
	shown := commits
	if len(shown) > maxCommitLines {
		shown = shown[:maxCommitLines]
	}

	var msg string
	for _, commit := range shown {
		shortSHA := commit.GetID()
		if len(shortSHA) > 7 {
			shortSHA = shortSHA[:7]
		}
		firstLine, _, _ := strings.Cut(commit.GetMessage(), "\n")
		msg += fmt.Sprintf("\\- %s %s\n", markup.Code(shortSHA), markup.Escape(firstLine))
	}

	if omitted := len(commits) - maxCommitLines; omitted > 0 {
		msg += fmt.Sprintf("➕ %d more commits\n", omitted)
	}
	return msg
}
