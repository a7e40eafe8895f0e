package marketplace

import (
	"encoding/json"
	"fmt"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// JobStatus is the lifecycle status of a job. Values match the integers the
// marketplace contract returns.
type JobStatus uint8

const (
	JobStatusUnknown JobStatus = iota
	JobStatusOpen
	JobStatusAssigned
	JobStatusSubmitted
	JobStatusCompleted
	JobStatusDisputed
	JobStatusCancelled
)

var jobStatusNames = [...]string{"unknown", "open", "assigned", "submitted", "completed", "disputed", "cancelled"}

func (s JobStatus) String() string {
	if int(s) < len(jobStatusNames) {
		return jobStatusNames[s]
	}
	return fmt.Sprintf("job_status(%d)", s)
}

// IsTerminal returns true if no further action is possible from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusDisputed || s == JobStatusCancelled
}

// HasWorker reports whether a job in status s must have an assigned worker.
func (s JobStatus) HasWorker() bool {
	switch s {
	case JobStatusAssigned, JobStatusSubmitted, JobStatusCompleted, JobStatusDisputed:
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseJobStatus maps a contract integer to a JobStatus. Integers outside
// the known range are rejected.
func ParseJobStatus(v int64) (JobStatus, error) {
	if v < 0 || v >= int64(len(jobStatusNames)) {
		return 0, errors.Newf(errors.KindDecode, "parse_job_status", "job status %d out of range", v)
	}
	return JobStatus(v), nil
}

// ApplicationStatus is the status of a worker application.
type ApplicationStatus uint8

const (
	ApplicationStatusUnknown ApplicationStatus = iota
	ApplicationStatusPending
	ApplicationStatusAccepted
	ApplicationStatusRejected
)

var applicationStatusNames = [...]string{"unknown", "pending", "accepted", "rejected"}

func (s ApplicationStatus) String() string {
	if int(s) < len(applicationStatusNames) {
		return applicationStatusNames[s]
	}
	return fmt.Sprintf("application_status(%d)", s)
}

// MarshalJSON implements json.Marshaler.
func (s ApplicationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseApplicationStatus maps a contract integer to an ApplicationStatus.
func ParseApplicationStatus(v int64) (ApplicationStatus, error) {
	if v < 0 || v >= int64(len(applicationStatusNames)) {
		return 0, errors.Newf(errors.KindDecode, "parse_application_status", "application status %d out of range", v)
	}
	return ApplicationStatus(v), nil
}

// ExtensionRequestStatus is the status of a deadline extension request.
type ExtensionRequestStatus uint8

const (
	ExtensionStatusUnknown ExtensionRequestStatus = iota
	ExtensionStatusPending
	ExtensionStatusApproved
	ExtensionStatusRejected
)

var extensionStatusNames = [...]string{"unknown", "pending", "approved", "rejected"}

func (s ExtensionRequestStatus) String() string {
	if int(s) < len(extensionStatusNames) {
		return extensionStatusNames[s]
	}
	return fmt.Sprintf("extension_status(%d)", s)
}

// IsTerminal returns true once the employer has responded.
func (s ExtensionRequestStatus) IsTerminal() bool {
	return s == ExtensionStatusApproved || s == ExtensionStatusRejected
}

// MarshalJSON implements json.Marshaler.
func (s ExtensionRequestStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseExtensionRequestStatus maps a contract integer to an ExtensionRequestStatus.
func ParseExtensionRequestStatus(v int64) (ExtensionRequestStatus, error) {
	if v < 0 || v >= int64(len(extensionStatusNames)) {
		return 0, errors.Newf(errors.KindDecode, "parse_extension_status", "extension status %d out of range", v)
	}
	return ExtensionRequestStatus(v), nil
}

// SkillLevel is the claimed proficiency of a skill proof.
type SkillLevel uint8

const (
	SkillLevelUnknown SkillLevel = iota
	SkillLevelBeginner
	SkillLevelIntermediate
	SkillLevelAdvanced
	SkillLevelExpert
)

var skillLevelNames = [...]string{"unknown", "beginner", "intermediate", "advanced", "expert"}

func (l SkillLevel) String() string {
	if int(l) < len(skillLevelNames) {
		return skillLevelNames[l]
	}
	return fmt.Sprintf("skill_level(%d)", l)
}

// MarshalJSON implements json.Marshaler.
func (l SkillLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// ParseSkillLevel maps a contract integer to a SkillLevel.
func ParseSkillLevel(v int64) (SkillLevel, error) {
	if v < 0 || v >= int64(len(skillLevelNames)) {
		return 0, errors.Newf(errors.KindDecode, "parse_skill_level", "skill level %d out of range", v)
	}
	return SkillLevel(v), nil
}

// SkillLevelFromName parses a level name such as "advanced".
func SkillLevelFromName(name string) (SkillLevel, error) {
	for i, n := range skillLevelNames {
		if n == name && i > 0 {
			return SkillLevel(i), nil
		}
	}
	return 0, errors.Newf(errors.KindValidation, "parse_skill_level", "unknown skill level %q", name)
}

// EscrowStatus is the status of an escrow held for a job.
type EscrowStatus uint8

const (
	EscrowStatusUnknown EscrowStatus = iota
	EscrowStatusFunded
	EscrowStatusReleased
	EscrowStatusDisputed
)

var escrowStatusNames = [...]string{"unknown", "funded", "released", "disputed"}

func (s EscrowStatus) String() string {
	if int(s) < len(escrowStatusNames) {
		return escrowStatusNames[s]
	}
	return fmt.Sprintf("escrow_status(%d)", s)
}

// MarshalJSON implements json.Marshaler.
func (s EscrowStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseEscrowStatus maps a contract integer to an EscrowStatus.
func ParseEscrowStatus(v int64) (EscrowStatus, error) {
	if v < 0 || v >= int64(len(escrowStatusNames)) {
		return 0, errors.Newf(errors.KindDecode, "parse_escrow_status", "escrow status %d out of range", v)
	}
	return EscrowStatus(v), nil
}
