package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"e2erun/internal/config"
	"e2erun/internal/discovery"
	"e2erun/internal/domain"
)

// Formatter formats and displays stored results and file listings
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, parser *discovery.Parser, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    out,
	}
}

// PrintMetaStats displays the statistics of a stored run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprint(f.out, "\n")
	titleColor.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	titleColor.Fprintln(f.out, "║                  E2E Test Execution Statistics                ║")
	titleColor.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Total Test Files", fmt.Sprint(meta.TotalTestFiles), nil},
		{"Passed Test Files", fmt.Sprint(meta.PassedTestFiles), passColor},
		{"Failed Test Files", fmt.Sprint(meta.FailedTestFiles), failColor},
		{"Skipped Test Files", fmt.Sprint(meta.SkippedTestFiles), skipColor},
		{"Retried Test Files", fmt.Sprint(meta.RetriedTestFiles), nil},
		{"Failed Test Cases", fmt.Sprint(meta.FailedTestCases), failColor},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), nil},
		{"CI", fmt.Sprint(meta.CI), nil},
		{"Timestamp", meta.Timestamp, nil},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		value := fmt.Sprintf("%-27s │", row.value)
		if row.c != nil {
			row.c.Fprintln(f.out, value)
		} else {
			fmt.Fprintln(f.out, value)
		}
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	switch {
	case meta.Aborted:
		failColor.Fprintf(f.out, "✗ Run aborted after a final failure (%d file(s) failed)\n", meta.FailedTestFiles)
	case meta.FailedTestFiles == 0:
		passColor.Fprintln(f.out, "✓ All tests passed!")
		return
	default:
		failColor.Fprintf(f.out, "✗ %d test file(s) failed with %d case failure(s)\n", meta.FailedTestFiles, meta.FailedTestCases)
	}
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsFile   bool
}

// printFailedTestsTree prints failures grouped by directory and file
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	if len(failures) == 0 {
		return
	}

	root := &TreeNode{Children: make(map[string]*TreeNode)}
	for _, failure := range failures {
		parts := strings.Split(filepath.ToSlash(f.rel(failure.FilePath)), "/")
		current := root
		for i, part := range parts {
			if part == "" || part == "." {
				continue
			}
			child := current.Children[part]
			if child == nil {
				child = &TreeNode{Name: part, Children: make(map[string]*TreeNode), IsFile: i == len(parts)-1}
				current.Children[part] = child
			}
			current = child
		}
		current.Failures = append(current.Failures, failure)
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		last := i == len(keys)-1

		connector, nextPrefix := "├── ", prefix+"│   "
		if last {
			connector, nextPrefix = "└── ", prefix+"    "
		}

		if child.IsFile {
			skipColor.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
			for j, failure := range child.Failures {
				caseConnector := "├── "
				if j == len(child.Failures)-1 {
					caseConnector = "└── "
				}
				failColor.Fprintf(f.out, "%s%s%s\n", nextPrefix, caseConnector, failureLabel(failure))
			}
			continue
		}
		titleColor.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		f.printTreeNode(child, nextPrefix)
	}
}

// failureLabel names a failure by its case, or by stage for file-level failures
func failureLabel(failure domain.TestFailure) string {
	name := failure.TestName
	if name == "" {
		name = "<" + string(failure.Kind) + ">"
	}
	if failure.Final {
		return fmt.Sprintf("%s (attempt %d, final)", name, failure.Attempt)
	}
	return fmt.Sprintf("%s (attempt %d)", name, failure.Attempt)
}

// CountTestCases returns the total number of statically declared cases across files
func (f *Formatter) CountTestCases(files []string) (int, error) {
	var total int
	for _, file := range files {
		declared, err := f.parser.FindTestCases(file)
		if err != nil {
			return 0, err
		}
		total += len(declared.Cases)
	}
	return total, nil
}

// PrintTestList prints a list of test files, optionally with their cases.
// Files in failedPaths (from the last run) are marked with [F].
func (f *Formatter) PrintTestList(files []string, showTestCases bool, failedPaths map[string]struct{}) {
	passColor.Fprintf(f.out, "Found %d test file(s):\n", len(files))

	for i, file := range files {
		rel := f.rel(file)
		marker := ""
		if _, ok := failedPaths[rel]; ok {
			marker = " " + failColor.Sprint("[F]")
		}

		lastFile := i == len(files)-1
		connector, childPrefix := "├── ", "│   "
		if lastFile {
			connector, childPrefix = "└── ", "    "
		}
		titleColor.Fprintf(f.out, "%s%s", connector, rel)
		fmt.Fprintln(f.out, marker)

		if !showTestCases {
			continue
		}

		declared, err := f.parser.FindTestCases(file)
		switch {
		case err != nil:
			failColor.Fprintf(f.out, "%s└── error reading file: %v\n", childPrefix, err)
		case declared.Skipped:
			skipColor.Fprintf(f.out, "%s└── (skipped)\n", childPrefix)
		case len(declared.Cases) == 0:
			failColor.Fprintf(f.out, "%s└── (no test cases found)\n", childPrefix)
		default:
			for j, c := range declared.Cases {
				caseConnector := "├── "
				if j == len(declared.Cases)-1 {
					caseConnector = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s\n", childPrefix, caseConnector, skipColor.Sprint(c))
			}
		}
	}
}

// rel returns path relative to the project, in slash form
func (f *Formatter) rel(path string) string {
	if rel, err := filepath.Rel(f.config.ProjectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// FailedPaths returns the project-relative paths of the files a stored run left failing
func (f *Formatter) FailedPaths(output *domain.TestResultsOutput) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, path := range output.Failing {
		paths[f.rel(path)] = struct{}{}
	}
	return paths
}
