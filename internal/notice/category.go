package notice

import "strings"

const (
	tagMaintenance = "maintenance"
	tagStatus      = "status"
)

// systemTags are administrative labels that never name an affected service.
var systemTags = map[string]struct{}{
	"status":      {},
	"maintenance": {},
	"bug":         {},
	"enhancement": {},
	"help wanted": {},
	"question":    {},
}

// CategoryOf maps a tag set to a category with maintenance > status > info.
func CategoryOf(tags []string) Category {
	var status bool
	for _, t := range tags {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case tagMaintenance:
			return CategoryMaintenance
		case tagStatus:
			status = true
		}
	}
	if status {
		return CategoryStatus
	}
	return CategoryInfo
}

// AffectedServicesFromTags drops system tags and keeps the rest as-is.
func AffectedServicesFromTags(tags []string) []string {
	services := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := systemTags[strings.ToLower(strings.TrimSpace(t))]; ok {
			continue
		}
		services = append(services, t)
	}
	return services
}
