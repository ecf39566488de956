package fieldcrypt

// State classifies the outcome of a decryption.
type State uint8

const (
	// Absent means no value was stored (NULL or empty blob).
	Absent State = iota
	// Present means the blob authenticated and Value holds the plaintext.
	Present
	// IntegrityFailure means a blob was stored but could not be recovered:
	// wrong key or version, corruption, or tampering.
	IntegrityFailure
)

// String returns a lowercase name for logging.
func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case IntegrityFailure:
		return "integrity_failure"
	default:
		return "unknown"
	}
}

// Plaintext is the tagged result of FieldCipher.Decrypt. Callers must not treat
// IntegrityFailure as "no value".
type Plaintext struct {
	State State
	Value string
	// Err describes an IntegrityFailure; nil otherwise.
	Err error
}

// Get returns the value and true only when State is Present.
func (p Plaintext) Get() (string, bool) {
	return p.Value, p.State == Present
}

func absentPlaintext() Plaintext {
	return Plaintext{State: Absent}
}

func presentPlaintext(v string) Plaintext {
	return Plaintext{State: Present, Value: v}
}

func failedPlaintext(err error) Plaintext {
	return Plaintext{State: IntegrityFailure, Err: err}
}
