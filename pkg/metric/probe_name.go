package metric

import "slices"

// ProbeName identifies one runner probe. The set of names is closed; names
// outside it are rejected when a metric is parsed.
type ProbeName string

// Known probe names.
const (
	Archived                                      ProbeName = "archived"
	BlocksDeleteOnBranches                        ProbeName = "blocksDeleteOnBranches"
	BlocksForcePushOnBranches                     ProbeName = "blocksForcePushOnBranches"
	BranchProtectionAppliesToAdmins               ProbeName = "branchProtectionAppliesToAdmins"
	BranchesAreProtected                          ProbeName = "branchesAreProtected"
	CodeApproved                                  ProbeName = "codeApproved"
	CodeReviewOneReviewers                        ProbeName = "codeReviewOneReviewers"
	ContributorsFromOrgOrCompany                  ProbeName = "contributorsFromOrgOrCompany"
	CreatedRecently                               ProbeName = "createdRecently"
	DependencyUpdateToolConfigured                ProbeName = "dependencyUpdateToolConfigured"
	DismissesStaleReviews                         ProbeName = "dismissesStaleReviews"
	Fuzzed                                        ProbeName = "fuzzed"
	HasBinaryArtifacts                            ProbeName = "hasBinaryArtifacts"
	HasDangerousWorkflowScriptInjection           ProbeName = "hasDangerousWorkflowScriptInjection"
	HasDangerousWorkflowUntrustedCheckout         ProbeName = "hasDangerousWorkflowUntrustedCheckout"
	HasFSFOrOSIApprovedLicense                    ProbeName = "hasFSFOrOSIApprovedLicense"
	HasLicenseFile                                ProbeName = "hasLicenseFile"
	HasNoGitHubWorkflowPermissionUnknown          ProbeName = "hasNoGitHubWorkflowPermissionUnknown"
	HasOSVVulnerabilities                         ProbeName = "hasOSVVulnerabilities"
	HasOpenSSFBadge                               ProbeName = "hasOpenSSFBadge"
	HasPermissiveLicense                          ProbeName = "hasPermissiveLicense"
	HasRecentCommits                              ProbeName = "hasRecentCommits"
	HasReleaseSBOM                                ProbeName = "hasReleaseSBOM"
	HasSBOM                                       ProbeName = "hasSBOM"
	HasUnverifiedBinaryArtifacts                  ProbeName = "hasUnverifiedBinaryArtifacts"
	IssueActivityByProjectMember                  ProbeName = "issueActivityByProjectMember"
	JobLevelPermissions                           ProbeName = "jobLevelPermissions"
	PackagedWithAutomatedWorkflow                 ProbeName = "packagedWithAutomatedWorkflow"
	PinsDependencies                              ProbeName = "pinsDependencies"
	ReleasesAreSigned                             ProbeName = "releasesAreSigned"
	ReleasesHaveProvenance                        ProbeName = "releasesHaveProvenance"
	ReleasesHaveVerifiedProvenance                ProbeName = "releasesHaveVerifiedProvenance"
	RequiresApproversForPullRequests              ProbeName = "requiresApproversForPullRequests"
	RequiresCodeOwnersReview                      ProbeName = "requiresCodeOwnersReview"
	RequiresLastPushApproval                      ProbeName = "requiresLastPushApproval"
	RequiresPRsToChangeCode                       ProbeName = "requiresPRsToChangeCode"
	RequiresUpToDateBranches                      ProbeName = "requiresUpToDateBranches"
	RunsStatusChecksBeforeMerging                 ProbeName = "runsStatusChecksBeforeMerging"
	SastToolConfigured                            ProbeName = "sastToolConfigured"
	SastToolRunsOnAllCommits                      ProbeName = "sastToolRunsOnAllCommits"
	SecurityPolicyContainsLinks                   ProbeName = "securityPolicyContainsLinks"
	SecurityPolicyContainsText                    ProbeName = "securityPolicyContainsText"
	SecurityPolicyContainsVulnerabilityDisclosure ProbeName = "securityPolicyContainsVulnerabilityDisclosure"
	SecurityPolicyPresent                         ProbeName = "securityPolicyPresent"
	TestsRunInCI                                  ProbeName = "testsRunInCI"
	TopLevelPermissions                           ProbeName = "topLevelPermissions"
	Unsafeblock                                   ProbeName = "unsafeblock"
	WebhooksUseSecrets                            ProbeName = "webhooksUseSecrets"
)

// AllProbeNames lists every known probe in lexical order.
var AllProbeNames = []ProbeName{
	Archived,
	BlocksDeleteOnBranches,
	BlocksForcePushOnBranches,
	BranchProtectionAppliesToAdmins,
	BranchesAreProtected,
	CodeApproved,
	CodeReviewOneReviewers,
	ContributorsFromOrgOrCompany,
	CreatedRecently,
	DependencyUpdateToolConfigured,
	DismissesStaleReviews,
	Fuzzed,
	HasBinaryArtifacts,
	HasDangerousWorkflowScriptInjection,
	HasDangerousWorkflowUntrustedCheckout,
	HasFSFOrOSIApprovedLicense,
	HasLicenseFile,
	HasNoGitHubWorkflowPermissionUnknown,
	HasOSVVulnerabilities,
	HasOpenSSFBadge,
	HasPermissiveLicense,
	HasRecentCommits,
	HasReleaseSBOM,
	HasSBOM,
	HasUnverifiedBinaryArtifacts,
	IssueActivityByProjectMember,
	JobLevelPermissions,
	PackagedWithAutomatedWorkflow,
	PinsDependencies,
	ReleasesAreSigned,
	ReleasesHaveProvenance,
	ReleasesHaveVerifiedProvenance,
	RequiresApproversForPullRequests,
	RequiresCodeOwnersReview,
	RequiresLastPushApproval,
	RequiresPRsToChangeCode,
	RequiresUpToDateBranches,
	RunsStatusChecksBeforeMerging,
	SastToolConfigured,
	SastToolRunsOnAllCommits,
	SecurityPolicyContainsLinks,
	SecurityPolicyContainsText,
	SecurityPolicyContainsVulnerabilityDisclosure,
	SecurityPolicyPresent,
	TestsRunInCI,
	TopLevelPermissions,
	Unsafeblock,
	WebhooksUseSecrets,
}

// ParseProbeName returns the probe called s, reporting whether it is known.
func ParseProbeName(s string) (ProbeName, bool) {
	if slices.Contains(AllProbeNames, ProbeName(s)) {
		return ProbeName(s), true
	}
	return "", false
}

func (p ProbeName) String() string { return string(p) }
