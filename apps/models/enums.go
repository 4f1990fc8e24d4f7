package models

// Department codes used to group employees and budget hours
const (
	DepartmentPM    = "PM"
	DepartmentMED   = "MED"
	DepartmentHD    = "HD"
	DepartmentMFG   = "MFG"
	DepartmentBUILD = "BUILD"
	DepartmentPRG   = "PRG"
)

// DepartmentLabels maps department codes to display names
var DepartmentLabels = map[string]string{
	DepartmentPM:    "Project Manager",
	DepartmentMED:   "Mechanical Design",
	DepartmentHD:    "Hardware Design",
	DepartmentMFG:   "Manufacturing",
	DepartmentBUILD: "Assembly",
	DepartmentPRG:   "Programming PLC",
}

// DepartmentCodes lists the codes in canonical display order
var DepartmentCodes = []string{
	DepartmentPM,
	DepartmentMED,
	DepartmentHD,
	DepartmentMFG,
	DepartmentBUILD,
	DepartmentPRG,
}

// IsValidDepartment reports whether code is one of the six departments
func IsValidDepartment(code string) bool {
	_, ok := DepartmentLabels[code]
	return ok
}

// Facility/site codes for projects
const (
	FacilityAL = "AL"
	FacilityMI = "MI"
	FacilityMX = "MX"
)

var FacilityLabels = map[string]string{
	FacilityAL: "Facility A",
	FacilityMI: "Facility B",
	FacilityMX: "Facility C",
}

func IsValidFacility(code string) bool {
	_, ok := FacilityLabels[code]
	return ok
}

// Work stage codes. Stages are free labels as far as scheduling is
// concerned; the catalog only drives dropdowns and validation.
const (
	// HD stages
	StageSwitchLayoutRevision = "SWITCH_LAYOUT_REVISION"
	StageControlsDesign       = "CONTROLS_DESIGN"

	// MED stages
	StageConcept      = "CONCEPT"
	StageDetailDesign = "DETAIL_DESIGN"

	// BUILD stages
	StageCabinetsFrames  = "CABINETS_FRAMES"
	StageOverallAssembly = "OVERALL_ASSEMBLY"
	StageFineTuning      = "FINE_TUNING"
	StageCommissioning   = "COMMISSIONING"

	// PRG stages
	StageOffline = "OFFLINE"
	StageOnline  = "ONLINE"
	StageDebug   = "DEBUG"

	// Common stages
	StageRelease                  = "RELEASE"
	StageRedLines                 = "RED_LINES"
	StageSupport                  = "SUPPORT"
	StageSupportManualsFlowCharts = "SUPPORT_MANUALS_FLOW_CHARTS"
	StageRobotSimulation          = "ROBOT_SIMULATION"
	StageStandardsRevConcept      = "STANDARDS_REV_PROGRAMING_CONCEPT"
)

var StageLabels = map[string]string{
	StageSwitchLayoutRevision:     "Switch Layout Revision",
	StageControlsDesign:           "Controls Design",
	StageConcept:                  "Concept",
	StageDetailDesign:             "Detail Design",
	StageCabinetsFrames:           "Cabinets/Frames",
	StageOverallAssembly:          "Overall Assembly",
	StageFineTuning:               "Fine Tuning",
	StageCommissioning:            "Commissioning",
	StageOffline:                  "Offline",
	StageOnline:                   "Online",
	StageDebug:                    "Debug",
	StageRelease:                  "Release",
	StageRedLines:                 "Red Lines",
	StageSupport:                  "Support",
	StageSupportManualsFlowCharts: "Support/Manuals/Flow Charts",
	StageRobotSimulation:          "Robot Simulation",
	StageStandardsRevConcept:      "Standards Rev/Programming Concept",
}

// DepartmentStages maps departments to the stages their planners pick from.
// PM and MFG track no stages of their own.
var DepartmentStages = map[string][]string{
	DepartmentHD: {
		StageSwitchLayoutRevision,
		StageControlsDesign,
		StageRelease,
		StageRedLines,
		StageSupport,
	},
	DepartmentMED: {
		StageConcept,
		StageDetailDesign,
		StageRelease,
		StageRedLines,
		StageSupportManualsFlowCharts,
		StageRobotSimulation,
	},
	DepartmentBUILD: {
		StageCabinetsFrames,
		StageOverallAssembly,
		StageFineTuning,
		StageCommissioning,
		StageSupport,
	},
	DepartmentPRG: {
		StageStandardsRevConcept,
		StageOffline,
		StageOnline,
		StageDebug,
		StageSupport,
	},
}

// StagesForDepartment returns the stage codes a department may use
func StagesForDepartment(department string) []string {
	return DepartmentStages[department]
}

// AllStages returns every known stage code in a stable order
func AllStages() []string {
	return []string{
		StageSwitchLayoutRevision,
		StageControlsDesign,
		StageConcept,
		StageDetailDesign,
		StageCabinetsFrames,
		StageOverallAssembly,
		StageFineTuning,
		StageCommissioning,
		StageOffline,
		StageOnline,
		StageDebug,
		StageRelease,
		StageRedLines,
		StageSupport,
		StageSupportManualsFlowCharts,
		StageRobotSimulation,
		StageStandardsRevConcept,
	}
}

// Subcontract companies available for BUILD department capacity
const (
	SubcontractAMI          = "AMI"
	SubcontractVICER        = "VICER"
	SubcontractITAX         = "ITAX"
	SubcontractMCI          = "MCI"
	SubcontractMGElectrical = "MG Electrical"
)

var SubcontractCompanies = []string{
	SubcontractAMI,
	SubcontractVICER,
	SubcontractITAX,
	SubcontractMCI,
	SubcontractMGElectrical,
}
