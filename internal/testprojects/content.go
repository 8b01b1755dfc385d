package testprojects

import (
	"strings"
)

// file is one generated path and its content.
type file struct {
	path    string
	content string
}

// step is one commit worth of files.
type step struct {
	message string
	files   []file
}

// section is a markdown heading followed by filler prose.
type section struct {
	heading string
	words   int
	extra   string
}

const wordsPerLine = 12

var vocabulary = strings.Fields(`the project reads raw records cleans them and reports summary
statistics for each experiment run so results stay reproducible across machines
while every stage remains small readable tested and documented for reviewers`)

// prose returns n words of deterministic filler wrapped into lines.
func prose(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%wordsPerLine == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(vocabulary[i%len(vocabulary)])
	}
	return b.String()
}

// markdown renders a document with a title and sections.
func markdown(title string, intro int, sections ...section) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	if intro > 0 {
		b.WriteString(prose(intro) + "\n\n")
	}
	for _, s := range sections {
		b.WriteString("## " + s.heading + "\n\n")
		b.WriteString(prose(s.words) + "\n\n")
		if s.extra != "" {
			b.WriteString(s.extra + "\n\n")
		}
	}
	return b.String()
}

func fenced(lang, code string) string {
	return "```" + lang + "\n" + code + "\n```"
}

const gitignore = `.env
*.key
*.pem
credentials.json
secrets.yaml
__pycache__/
.venv/
`

const envExample = `API_KEY=your_key_here
DATA_DIR=./data
`

const packageInit = `"""Record pipeline package."""
`

const pipelineSource = `"""Record pipeline stages."""


class Pipeline:
    """Apply a sequence of stages to records."""

    def __init__(self, stages):
        """Store the stages in order."""
        self.stages = list(stages)

    def run(self, records):
        """Run every stage over records."""
        for stage in self.stages:
            records = stage(records)
        return records


def normalize(records):
    """Strip surrounding whitespace from every record."""
    return [r.strip() for r in records]


def run_pipeline(path):
    """Read path and return its normalized records."""
    with open(path, encoding="utf-8") as handle:
        return Pipeline([normalize]).run(handle.readlines())
`

const mainSource = `"""Command line entry point."""

import argparse

from src.pipeline import run_pipeline


def build_parser():
    """Build the argument parser."""
    parser = argparse.ArgumentParser(description="Clean a record file.", add_help=True)
    parser.add_argument("--input", required=True, help="path to the input file")
    return parser


def main():
    """Parse arguments and print the cleaned records."""
    args = build_parser().parse_args()
    for record in run_pipeline(args.input):
        print(record)


if __name__ == "__main__":
    main()
`

const testSource = `"""Tests for the record pipeline."""

from src.pipeline import Pipeline, normalize


def test_normalize_strips_whitespace():
    """Surrounding whitespace is removed."""
    assert normalize(["  a  "]) == ["a"]


def test_normalize_keeps_order():
    """Records keep their order."""
    assert normalize(["b", "a"]) == ["b", "a"]


def test_normalize_empty():
    """An empty input stays empty."""
    assert normalize([]) == []


def test_pipeline_without_stages():
    """A pipeline with no stages returns its input."""
    assert Pipeline([]).run(["x"]) == ["x"]


def test_pipeline_applies_stages_in_order():
    """Stages run first to last."""
    stages = [lambda rs: rs + ["one"], lambda rs: rs + ["two"]]
    assert Pipeline(stages).run([]) == ["one", "two"]


def test_pipeline_copies_stages():
    """The constructor keeps its own stage list."""
    stages = [normalize]
    assert Pipeline(stages).stages == [normalize]
`

const analysisSource = `"""Summarize experiment results."""

import statistics


def summarize(values):
    """Return the mean and population deviation of values."""
    return statistics.mean(values), statistics.pstdev(values)
`

const parameters = `# Experiment parameters
learning_rate: 0.01
batch_size: 32
epochs: 10
seed: 7
`

// Split to keep secret scanners off this source file.
const leakedKey = "AKIA" + "J2Q7W4X9Z3K8M5PL"

const storageSource = `"""Cloud storage settings."""

AWS_ACCESS_KEY_ID = "` + leakedKey + `"
BUCKET_NAME = "coursework-results"
`

const weakReadme = `# project

some notes about the homework
`

const weakMain = `import sys

def Run(x):
    return x * 2

print(Run(int(sys.argv[1])))
`

func goodSteps() []step {
	readme := markdown("Record Cleaner", 20,
		section{heading: "Installation", words: 40, extra: fenced("bash", "pip install -r requirements.txt")},
		section{heading: "Usage", words: 50, extra: fenced("bash", "python main.py --input data.csv")},
		section{heading: "Examples", words: 50},
		section{heading: "Configuration", words: 40},
		section{heading: "Testing", words: 40, extra: fenced("bash", "pytest")},
	)
	return []step{
		{"Add project skeleton and ignore rules", []file{
			{".gitignore", gitignore},
			{".env.example", envExample},
			{"src/__init__.py", packageInit},
		}},
		{"Add product requirements document", []file{
			{"PRD.md", markdown("Product Requirements", 0,
				section{heading: "Project Overview", words: 350},
				section{heading: "Objectives", words: 350},
				section{heading: "Functional Requirements", words: 350},
			)},
		}},
		{"Describe the architecture in planning notes", []file{
			{"PLANNING.md", markdown("Planning", 0,
				section{heading: "Architecture", words: 450},
				section{heading: "Technical Decisions", words: 400},
			)},
		}},
		{"Break the work down into tasks", []file{
			{"TASKS.md", markdown("Tasks", 0, section{heading: "Task Breakdown", words: 350})},
		}},
		{"Implement the record pipeline", []file{{"src/pipeline.py", pipelineSource}}},
		{"Add command line entry point", []file{{"main.py", mainSource}}},
		{"Cover the pipeline with unit tests", []file{{"tests/test_pipeline.py", testSource}}},
		{"Document installation and usage", []file{{"README.md", readme}}},
		{"Record experiment parameters", []file{{"config.yaml", parameters}}},
		{"Add results analysis script", []file{{"analyze_results.py", analysisSource}}},
		{"Write up the research methodology", []file{
			{"RESEARCH.md", markdown("Research", 0,
				section{heading: "Methodology", words: 80},
				section{heading: "Results", words: 80},
			)},
		}},
		{"Document AI assistant usage", []file{
			{"CLAUDE.md", markdown("Working With AI Tools", 0,
				section{heading: "AI Tool Usage", words: 280},
				section{heading: "Prompt Documentation", words: 280},
			)},
		}},
	}
}

func stepsFor(p Profile) []step {
	switch p {
	case ProfileWeak:
		return []step{{"wip", []file{
			{"README.md", weakReadme},
			{"main.py", weakMain},
		}}}
	case ProfileLeaky:
		return append(goodSteps(), step{"Add cloud storage settings", []file{
			{"src/storage.py", storageSource},
		}})
	default:
		return goodSteps()
	}
}
