package dataset

// Kind identifies one of the three extract families.
type Kind string

const (
	KindEnrolment   Kind = "enrolment"
	KindDemographic Kind = "demographic"
	KindBiometric   Kind = "biometric"
)

// Kinds lists all extract families in pipeline order.
var Kinds = []Kind{KindEnrolment, KindDemographic, KindBiometric}

// DefaultFolder returns the conventional directory name for a kind under a
// data root, matching how the program publishes its extracts.
func (k Kind) DefaultFolder() string {
	switch k {
	case KindEnrolment:
		return "api_data_aadhar_enrolment"
	case KindDemographic:
		return "api_data_aadhar_demographic"
	case KindBiometric:
		return "api_data_aadhar_biometric"
	default:
		return string(k)
	}
}

// bandColumns maps a kind to its age-band headers after normalization.
// Enrolment splits under-5s out; the update extracts only distinguish youth
// (5-17) from adult.
func (k Kind) bandColumns() (under5, youth, adult string) {
	switch k {
	case KindEnrolment:
		return "age_0_5", "age_5_17", "age_18_greater"
	case KindDemographic:
		return "", "demo_age_5_17", "demo_age_17_"
	case KindBiometric:
		return "", "bio_age_5_17", "bio_age_17_"
	default:
		return "", "", ""
	}
}

// Row is one extract record: a pincode's activity for one day, split into
// age bands. AgeUnder5 is only populated for enrolment rows.
type Row struct {
	Day      Date
	State    string
	District string
	Pincode  string

	AgeUnder5 int64
	AgeYouth  int64 // ages 5-17
	AgeAdult  int64 // 18+ for enrolment, 17+ for updates
}

// Dataset is every valid row of one extract family, plus load bookkeeping.
type Dataset struct {
	Kind    Kind
	Rows    []Row
	Sources []string // files read, sorted
	Skipped int      // malformed rows dropped across all files
}
