// Package detector implements the signature-based attack classification
// engine. All patterns are compiled once at package init and shared by every
// request; matchers are pure and safe for concurrent use.
package detector

import (
	"regexp"
)

// Family identifies one attack family with its own ordered signature list.
type Family string

const (
	FamilyXSS           Family = "xss"
	FamilySQLi          Family = "sqli"
	FamilyCmdi          Family = "cmdi"
	FamilyPathTraversal Family = "path_traversal"
)

// Signature pairs a compiled pattern with a human-readable description of
// what it detects. Lists are ordered: the first matching signature wins for
// its family, so narrower signatures that overlap a generic one must be
// listed before it.
type Signature struct {
	Pattern     *regexp.Regexp
	Description string
}

func sig(pattern, description string) Signature {
	return Signature{Pattern: regexp.MustCompile(pattern), Description: description}
}

// xssSignatures anchor on block constructs, so dot matches newline where a
// tag body may span lines.
var xssSignatures = []Signature{
	sig(`(?is)<script[^>]*>.*?</script>`, "script tag injection"),
	sig(`(?i)javascript\s*:`, "javascript pseudo-protocol"),
	sig(`(?i)vbscript\s*:`, "vbscript pseudo-protocol"),
	sig(`(?i)on\w+\s*=`, "inline event handler injection"),
	sig(`(?i)<iframe[^>]*>`, "iframe injection"),
	sig(`(?i)<embed[^>]*>`, "embed tag injection"),
	sig(`(?i)<object[^>]*>`, "object tag injection"),
	sig(`(?i)eval\s*\(`, "eval call"),
	sig(`(?i)alert\s*\(`, "alert call"),
	sig(`(?i)document\.cookie`, "cookie theft attempt"),
	sig(`(?i)document\.write`, "document.write injection"),
}

var sqliSignatures = []Signature{
	sig(`(?i)'\s*OR\s+'?1'?\s*=\s*'?1\s*--`, "OR 1=1 with comment truncation"),
	sig(`(?i)'\s*OR\s+'?1'?\s*=\s*'?1\s*#`, "OR 1=1 with hash comment"),
	sig(`(?i)'\s*OR\s+'?1'?\s*=\s*'?1\s*/\*`, "OR 1=1 with block comment"),
	sig(`(?i)'\s*OR\s+'?1'?\s*=\s*'?1`, "OR 1=1 tautology"),
	sig(`(?i)'\s*AND\s+'?1'?\s*=\s*'?2`, "AND 1=2 probe"),
	sig(`(?i)'\s*;\s*DROP\s+TABLE`, "stacked DROP TABLE"),
	sig(`(?i)'\s*;\s*DELETE\s+FROM`, "stacked DELETE"),
	sig(`(?i)'\s*;\s*UPDATE\s+`, "stacked UPDATE"),
	sig(`(?i)'\s*UNION\s+SELECT`, "UNION SELECT injection"),
	sig(`(?i)admin'\s*--`, "admin comment bypass"),
	sig(`(?i)admin'\s*#`, "admin hash bypass"),
	sig(`(?i)\bEXEC\s*\(`, "EXEC call"),
	sig(`(?i)\bEXECUTE\s+`, "EXECUTE statement"),
	sig(`(?i)xp_cmdshell`, "xp_cmdshell invocation"),
	sig(`(?i)BENCHMARK\s*\(`, "BENCHMARK time-based blind"),
	sig(`(?i)SLEEP\s*\(`, "SLEEP time-based blind"),
	sig(`(?i)WAITFOR\s+DELAY`, "WAITFOR DELAY blind"),
	sig(`(?i)LOAD_FILE\s*\(`, "file read primitive"),
	sig(`(?i)INTO\s+OUTFILE`, "file write primitive"),
	sig(`(?i)'\s*\+\s*'`, "string concatenation probe"),
	sig(`0x[0-9a-fA-F]+`, "hex-encoded literal"),
	sig(`(?i)CHAR\s*\(\d+`, "CHAR-encoded literal"),
}

var cmdiSignatures = []Signature{
	sig(`(?i);\s*cat\s+/etc/passwd`, "cat /etc/passwd"),
	sig(`(?i);\s*ls\s+-la`, "directory listing"),
	sig(`(?i);\s*ls\b`, "directory listing"),
	sig(`(?i);\s*whoami`, "whoami recon"),
	sig(`(?i);\s*id\b`, "id recon"),
	sig(`(?i);\s*uname\s+-a`, "uname system info"),
	sig(`(?i);\s*env\b`, "environment disclosure"),
	sig(`(?i);\s*ps\s+aux`, "process listing"),
	sig(`(?i);\s*netstat\s+-an`, "netstat recon"),
	sig(`(?i);\s*ifconfig\b`, "network config recon"),
	sig(`(?i);\s*ip\s+addr\b`, "network config recon"),
	sig(`(?i);\s*ipconfig\b`, "network config recon"),
	sig(`(?i);\s*wget\s+`, "wget download"),
	sig(`(?i);\s*curl\s+`, "curl exfiltration"),
	sig(`(?i);\s*nc\s+`, "netcat reverse shell"),
	sig(`(?i);\s*bash\s+-i`, "interactive bash shell"),
	sig(`(?i);\s*sh\s+-i`, "interactive sh shell"),
	sig(`(?i);\s*python\s+-c`, "python one-liner"),
	sig(`(?i);\s*perl\s+-e`, "perl one-liner"),
	sig(`(?i);\s*ruby\s+-e`, "ruby one-liner"),
	sig(`(?i);\s*rm\s+-rf`, "destructive rm"),
	sig(`(?i);\s*chmod\s+`, "permission change"),
	sig(`(?i);\s*chown\s+`, "ownership change"),
	sig(`(?i)\|\s*cat\s+`, "piped cat"),
	sig(`(?i)\|\s*grep\s+`, "piped grep"),
	sig(`(?i)\|\s*id\b`, "piped id"),
	sig("`.*`", "backtick command execution"),
	sig(`\$\(.*\)`, "$() command substitution"),
	sig(`&&\s*\w+`, "&& command chaining"),
	sig(`\|\|\s*\w+`, "|| command chaining"),
	sig(`>\s*/dev/null`, "output redirection"),
	sig(`<\s*/etc/`, "input redirection from sensitive path"),
	sig("(;|\\||&&|\\|\\||`|\\$\\()", "shell metacharacter"),
}

var pathTraversalSignatures = []Signature{
	sig(`(?i)\.\./\.\./\.\./etc/passwd`, "../../../etc/passwd"),
	sig(`(?i)\.\./\.\./etc/shadow`, "../../etc/shadow"),
	sig(`(?i)\.\./\.\./windows/system32`, "../../windows/system32"),
	sig(`(?i)\.\.[\\/]\.\.[\\/]`, "../.. traversal"),
	sig(`(?i)%2e%2e[/\\]`, "URL-encoded ../ traversal"),
	sig(`(?i)%252e%252e[/\\]`, "double URL-encoded traversal"),
	sig(`(?i)\.\.%2f`, "mixed-encoding traversal"),
	sig(`(?i)\.\.%5c`, "backslash-encoded traversal"),
	sig(`(?i)/etc/passwd`, "direct /etc/passwd access"),
	sig(`(?i)/etc/shadow`, "direct /etc/shadow access"),
	sig(`(?i)C:\\Windows\\System32`, "Windows system directory"),
	sig(`(?i)C:\\boot\.ini`, "Windows boot.ini"),
	sig(`(?i)/proc/self/environ`, "process environment access"),
	sig(`(?i)/var/log/`, "log file access"),
	sig(`(?i)\.\.\\\.\.\\`, "Windows path traversal"),
	sig(`(?i)file:///`, "file scheme access"),
}
