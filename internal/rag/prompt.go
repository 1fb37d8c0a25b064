package rag

import (
	"fmt"
	"strings"

	"demoreel/internal/analyzer"
)

// promptTemplate instructs the model to emit the "## " heading convention
// that the script parser depends on. The heading format is the contract
// between generation and post-processing; change both together.
const promptTemplate = `You are writing a spoken product demo script for a software project. The script will be read aloud over a screen recording, so write natural, conversational sentences with no bullet points, no code, and no stage directions.

Project: %s
Tech stack: %s
Target length: about %d seconds of speech
Style: %s

Use the repository context below to ground everything you say. Do not invent features that are not in the context.

%s

Structure the script as markdown sections, each starting with a level-2 heading:

## Introduction
(what the project is and why it matters)

## <one section per major feature or flow>
(walk through what the viewer sees)

## Conclusion
(wrap up and call to action)

Write only the script.`

// BuildPrompt assembles the final generation prompt from the context block
// and request parameters.
func BuildPrompt(contextBlock string, a *analyzer.Result, repoName, style string, durationSeconds int) string {
	stack := strings.Join(append(append([]string{}, a.Stack.Languages...), a.Stack.Frameworks...), ", ")
	if stack == "" {
		stack = "unknown"
	}
	if repoName == "" {
		repoName = "this repository"
	}
	if style == "" {
		style = "conversational"
	}
	return fmt.Sprintf(promptTemplate, repoName, stack, durationSeconds, style, contextBlock)
}
