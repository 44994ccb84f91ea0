package model

// Role names the part a catalog question plays in the submission. The
// backend's question ids differ per deployment, roles do not.
type Role string

const (
	RoleTitle            Role = "title"
	RoleDescription      Role = "description"
	RoleClientChallenges Role = "client_challenges"
	RoleAvailability     Role = "solution_availability"
	RoleRegions          Role = "regional_application"
	RoleCountries        Role = "specific_countries"
	RoleROI              Role = "roi"
	RoleIntegration      Role = "integration"
	RoleDifferentiation  Role = "differentiation"
	RoleMeasurableValue  Role = "measurable_value"
	RoleVideoURL         Role = "video_url"
	RoleReferences       Role = "references"
)

// Roles lists every role in submission order.
var Roles = []Role{
	RoleTitle,
	RoleDescription,
	RoleClientChallenges,
	RoleAvailability,
	RoleRegions,
	RoleCountries,
	RoleROI,
	RoleIntegration,
	RoleDifferentiation,
	RoleMeasurableValue,
	RoleVideoURL,
	RoleReferences,
}

// QuestionIDs resolves roles to catalog question ids.
type QuestionIDs map[Role]int

// DefaultQuestionIDs is the fixed 156-167 table.
func DefaultQuestionIDs() QuestionIDs {
	ids := QuestionIDs{}
	for i, r := range Roles {
		ids[r] = 156 + i
	}
	return ids
}

// Option text markers the backend catalog uses for the availability
// answers that unlock the region and country questions.
const (
	SelectRegionsMarker     = "select regions"
	SpecificCountriesMarker = "specific countries"
)
