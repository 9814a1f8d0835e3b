package analysis

// familyKeywords maps a control family code to the phrases whose presence in
// a document suggests the family is addressed.
var familyKeywords = map[string][]string{
	"AC": {"access control", "least privilege", "account management", "authorization"},
	"AT": {"awareness training", "security training", "training program"},
	"AU": {"audit log", "audit record", "audit trail", "logging", "log retention"},
	"CA": {"security assessment", "authorization to operate", "continuous monitoring"},
	"CM": {"configuration management", "baseline configuration", "change control", "change management"},
	"CP": {"contingency plan", "disaster recovery", "business continuity", "backup"},
	"IA": {"identification and authentication", "multi-factor", "mfa", "password policy", "authentication"},
	"IR": {"incident response", "incident handling", "security incident"},
	"MA": {"system maintenance", "maintenance personnel", "maintenance tools"},
	"MP": {"media protection", "media sanitization", "removable media"},
	"PE": {"physical access", "physical security", "facility", "visitor control"},
	"PL": {"security plan", "rules of behavior", "system security planning"},
	"PS": {"personnel security", "background check", "screening", "termination"},
	"RA": {"risk assessment", "vulnerability scan", "threat analysis"},
	"SA": {"system acquisition", "development lifecycle", "supply chain"},
	"SC": {"encryption", "cryptograph", "boundary protection", "transmission confidentiality", "network segmentation"},
	"SI": {"flaw remediation", "malicious code", "patch management", "system monitoring", "integrity"},
}

// topicVocabulary is the fixed list of domain topics the heuristic path can
// detect, checked in order against the lowercased document text.
var topicVocabulary = []string{
	"access control",
	"encryption",
	"audit logging",
	"incident response",
	"vulnerability management",
	"risk assessment",
	"configuration management",
	"authentication",
	"network security",
	"data protection",
	"backup and recovery",
	"physical security",
	"security training",
	"continuous monitoring",
	"patch management",
	"disaster recovery",
	"change management",
	"personnel security",
	"media protection",
	"supply chain",
}

// stopwords excluded from keyword frequency counts.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "that": true,
	"this": true, "with": true, "from": true, "will": true, "have": true,
	"been": true, "must": true, "shall": true, "should": true, "such": true,
	"their": true, "which": true, "when": true, "where": true, "these": true,
	"those": true, "other": true, "into": true, "within": true, "upon": true,
	"each": true, "all": true, "may": true, "can": true, "not": true,
	"its": true, "than": true, "then": true, "there": true, "also": true,
	"more": true, "any": true, "but": true, "was": true, "were": true,
	"being": true, "about": true, "through": true, "during": true, "between": true,
	"document": true, "system": true, "systems": true, "information": true,
	"organization": true, "organizational": true, "requirements": true,
}
