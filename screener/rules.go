package screener

import (
	"regexp"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule is a single denylisted construct. Exactly one of substr or
// pattern is set. Rules are checked in declaration order so the
// first reported issue is the most telling one.
type rule struct {
	substr   string
	pattern  *regexp.Regexp
	severity Severity
	message  string
}

func (r rule) matches(src string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(src)
	}
	return strings.Contains(src, r.substr)
}

func deny(substr string, message string) rule {
	return rule{substr: substr, severity: SeverityError, message: message}
}

func denyRe(expr string, message string) rule {
	return rule{pattern: regexp.MustCompile(expr), severity: SeverityError, message: message}
}

func warnRe(expr string, message string) rule {
	return rule{pattern: regexp.MustCompile(expr), severity: SeverityWarning, message: message}
}

// langFamily groups short language ids into rule sets. The cpp
// prefix has to be checked before the c prefix.
func langFamily(langID string) string {
	switch {
	case strings.HasPrefix(langID, "python"):
		return "python"
	case strings.HasPrefix(langID, "nodejs"):
		return "javascript"
	case strings.HasPrefix(langID, "go"):
		return "go"
	case strings.Contains(langID, "cpp"):
		return "cpp"
	case strings.Contains(langID, "-c"):
		return "c"
	case strings.HasPrefix(langID, "jdk"):
		return "java"
	default:
		return ""
	}
}

var rulesByFamily = map[string][]rule{
	"python": {
		deny("import os", "os module access is not allowed"),
		deny("from os", "os module access is not allowed"),
		deny("import subprocess", "spawning subprocesses is not allowed"),
		deny("from subprocess", "spawning subprocesses is not allowed"),
		deny("import socket", "network access is not allowed"),
		deny("import shutil", "file system access is not allowed"),
		deny("import ctypes", "native code loading is not allowed"),
		deny("import importlib", "dynamic imports are not allowed"),
		deny("__import__", "dynamic imports are not allowed"),
		denyRe(`\beval\s*\(`, "dynamic code evaluation is not allowed"),
		denyRe(`\bexec\s*\(`, "dynamic code evaluation is not allowed"),
		denyRe(`\bcompile\s*\(`, "dynamic code evaluation is not allowed"),
		denyRe(`\bopen\s*\(`, "file access is not allowed"),
		warnRe(`range\s*\(\s*\d{8,}`, "loop bound looks very large, execution may time out"),
	},
	"javascript": {
		denyRe(`require\s*\(\s*['"]fs['"]`, "file system access is not allowed"),
		denyRe(`require\s*\(\s*['"]child_process['"]`, "spawning subprocesses is not allowed"),
		denyRe(`require\s*\(\s*['"](net|http|https|dgram)['"]`, "network access is not allowed"),
		denyRe(`import\s*\(\s*['"](fs|child_process|net|http)`, "dynamic imports of system modules are not allowed"),
		denyRe(`\beval\s*\(`, "dynamic code evaluation is not allowed"),
		denyRe(`new\s+Function\s*\(`, "dynamic code evaluation is not allowed"),
		deny("process.binding", "process internals access is not allowed"),
		deny("process.env", "environment access is not allowed"),
		warnRe(`while\s*\(\s*true\s*\)`, "unconditional loop, execution may time out"),
	},
	"go": {
		deny(`"os/exec"`, "spawning subprocesses is not allowed"),
		deny(`"net"`, "network access is not allowed"),
		deny(`"net/http"`, "network access is not allowed"),
		deny(`"syscall"`, "raw syscalls are not allowed"),
		deny(`"unsafe"`, "unsafe memory access is not allowed"),
		deny(`"plugin"`, "dynamic code loading is not allowed"),
		denyRe(`os\.(Open|Create|Remove|RemoveAll|Rename)\b`, "file access is not allowed"),
	},
	"c": {
		denyRe(`\bsystem\s*\(`, "shell command execution is not allowed"),
		denyRe(`\bpopen\s*\(`, "spawning subprocesses is not allowed"),
		denyRe(`\bfork\s*\(`, "process creation is not allowed"),
		denyRe(`\bexec[lv]p?e?\s*\(`, "process creation is not allowed"),
		denyRe(`\bfopen\s*\(`, "file access is not allowed"),
		denyRe(`\bsocket\s*\(`, "network access is not allowed"),
		deny("<sys/socket.h>", "network access is not allowed"),
	},
	"cpp": {
		denyRe(`\bsystem\s*\(`, "shell command execution is not allowed"),
		denyRe(`\bpopen\s*\(`, "spawning subprocesses is not allowed"),
		denyRe(`\bfork\s*\(`, "process creation is not allowed"),
		denyRe(`\bexec[lv]p?e?\s*\(`, "process creation is not allowed"),
		denyRe(`\bfopen\s*\(`, "file access is not allowed"),
		deny("<fstream>", "file access is not allowed"),
		denyRe(`\bsocket\s*\(`, "network access is not allowed"),
		deny("<sys/socket.h>", "network access is not allowed"),
	},
	"java": {
		deny("Runtime.getRuntime", "process access is not allowed"),
		deny("ProcessBuilder", "spawning subprocesses is not allowed"),
		deny("java.io.File", "file access is not allowed"),
		deny("java.nio.file", "file access is not allowed"),
		deny("java.net.", "network access is not allowed"),
		deny("Class.forName", "reflective code loading is not allowed"),
		deny("System.exit", "terminating the sandbox is not allowed"),
	},
}
