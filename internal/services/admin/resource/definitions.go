package resource

import "github.com/louisbranch/yardconsole/internal/services/admin/workflow"

// Console route keys.
const (
	KeyActivity             = "activity"
	KeyEvent                = "event"
	KeyScenario             = "scenario"
	KeySetting              = "setting"
	KeyYard                 = "yard"
	KeyYardCard             = "yard-card"
	KeyYardConfigurationSAP = "yard-configuration-sap"
)

// Audit fields carried by upstream records.
var AuditFields = []string{"createdBy", "createdAt", "updatedBy", "updatedAt"}

// CategorySchema validates the nested create-category dialog.
var CategorySchema = workflow.MustSchema(
	text("yardActivityCategory", 50),
	workflow.Field{Name: "isCreateTaskDoc", Kind: workflow.KindBool, Required: true},
)

// CategoryDeleteSchema validates the delete-category dialog selection.
var CategoryDeleteSchema = workflow.MustSchema(
	workflow.Field{
		Name:        "yardActivityCategoryId",
		Kind:        workflow.KindNumber,
		Required:    true,
		Positive:    true,
		RequiredKey: workflow.KeyCategoryRequired,
	},
)

// DefaultDefinitions returns the yard master-data resources.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Key:      KeyActivity,
			Resource: YardActivities,
			TitleKey: "admin.resource.activity",
			Schema: workflow.MustSchema(
				text("yardActivity", 50),
				text("yardActivityDesc", 255),
				selection("yardActivityCategoryId"),
				text("pubToKafkaTopic", 128),
			),
			Inputs: []Input{
				textInput("yardActivity"),
				textInput("yardActivityDesc"),
				textInput("pubToKafkaTopic"),
				selectInput("yardActivityCategoryId", SourceCategories),
			},
			Columns: columns("yardActivity", "yardActivityDesc", "yardActivityCategory", "pubToKafkaTopic"),
		},
		{
			Resource:  YardActivityCategories,
			TitleKey:  "admin.resource.category",
			Schema:    CategorySchema,
			Inputs:    []Input{textInput("yardActivityCategory"), {Field: "isCreateTaskDoc", LabelKey: labelKey("isCreateTaskDoc"), Widget: WidgetRadio}},
			ReturnsID: true,
		},
		{
			Key:      KeyEvent,
			Resource: YardEvents,
			TitleKey: "admin.resource.event",
			Schema: workflow.MustSchema(
				text("yardEvent", 50),
				text("yardEventDesc", 255),
				text("subToKafkaTopic", 128),
			),
			Inputs:  textInputs("yardEvent", "yardEventDesc", "subToKafkaTopic"),
			Columns: columns("yardEvent", "yardEventDesc", "subToKafkaTopic"),
		},
		{
			Key:      KeyScenario,
			Resource: YardScenarios,
			TitleKey: "admin.resource.scenario",
			Schema: workflow.MustSchema(
				text("scenarioCode", 50),
				text("scenarioDesc", 255),
				text("scenarioCategory", 50),
			),
			Inputs: []Input{
				textInput("scenarioCode"),
				textInput("scenarioDesc"),
				selectInput("scenarioCategory", SourceScenarioCategories),
			},
			Columns: columns("scenarioCode", "scenarioDesc", "scenarioCategory"),
		},
		{
			Key:      KeySetting,
			Resource: Settings,
			TitleKey: "admin.resource.setting",
			Schema: workflow.MustSchema(
				text("settingId", 50),
				text("value", 50),
				text("description", 100),
			),
			Inputs:  textInputs("settingId", "value", "description"),
			Columns: columns("settingId", "seq", "value", "description", "createdBy", "createdAt", "updatedBy", "updatedAt"),
		},
		{
			Key:      KeyYardConfigurationSAP,
			Resource: YardConfigurationSAPs,
			TitleKey: "admin.resource.configuration_sap",
			Schema: workflow.MustSchema(
				selection("yardId"),
				text("host", 15),
				text("client", 3),
				text("systemNumber", 2),
				text("systemId", 3),
				text("username", 12),
				text("password", 100),
				text("lang", 2),
			),
			Inputs: []Input{
				selectInput("yardId", SourceYards),
				textInput("host"),
				textInput("client"),
				textInput("systemNumber"),
				textInput("systemId"),
				textInput("username"),
				{Field: "password", LabelKey: labelKey("password"), Widget: WidgetPassword},
				textInput("lang"),
			},
			Columns: append(columns("yardId", "host", "client", "systemNumber", "systemId", "username"),
				Column{Field: "password", LabelKey: labelKey("password"), Mask: true},
				Column{Field: "lang", LabelKey: labelKey("lang")},
			),
		},
		{
			Key:      KeyYardCard,
			Resource: YardCards,
			TitleKey: "admin.resource.yard_card",
			Schema: workflow.MustSchema(
				selection("yardId"),
				text("cardCode", 1),
				text("cardName", 100),
				number("maxCard"),
				number("startNum"),
				number("endNum"),
				text("kodeKbm", 2),
			),
			Inputs: []Input{
				selectInput("yardId", SourceYards),
				textInput("cardCode"),
				textInput("cardName"),
				numberInput("maxCard"),
				numberInput("startNum"),
				numberInput("endNum"),
				textInput("kodeKbm"),
			},
			Columns: columns("yardId", "cardCode", "cardName", "maxCard", "startNum", "endNum", "kodeKbm"),
		},
		{
			Key:      KeyYard,
			Resource: Yards,
			TitleKey: "admin.resource.yard",
			Schema: workflow.MustSchema(
				text("yardCode", 50),
				text("yardName", 255),
				selection("parentYardId"),
				text("yardType", 50),
				text("yardAddress", 255),
				number("latitude"),
				number("longitude"),
				text("sourceLoc", 10),
				selection("utcTimezone"),
			),
			Inputs: []Input{
				textInput("yardCode"),
				textInput("yardName"),
				selectInput("parentYardId", SourceEstates),
				selectInput("yardType", SourceYardTypes),
				textInput("yardAddress"),
				numberInput("latitude"),
				numberInput("longitude"),
				selectInput("sourceLoc", SourceLocations),
				selectInput("utcTimezone", SourceUTCTimes),
			},
			Columns: columns("yardCode", "yardName", "parentYardCode", "yardType", "yardAddress", "latitude", "longitude", "sourceLoc", "utcTimezone"),
		},
	}
}

func labelKey(field string) string {
	return "admin.field." + field
}

func text(name string, maxLength int) workflow.Field {
	return workflow.Field{Name: name, Kind: workflow.KindString, Required: true, MaxLength: maxLength}
}

func number(name string) workflow.Field {
	return workflow.Field{Name: name, Kind: workflow.KindNumber, Required: true}
}

func selection(name string) workflow.Field {
	return workflow.Field{Name: name, Kind: workflow.KindNumber, Required: true, RequiredKey: workflow.KeySelection}
}

func textInput(field string) Input {
	return Input{Field: field, LabelKey: labelKey(field), Widget: WidgetText}
}

func textInputs(fields ...string) []Input {
	out := make([]Input, 0, len(fields))
	for _, field := range fields {
		out = append(out, textInput(field))
	}
	return out
}

func numberInput(field string) Input {
	return Input{Field: field, LabelKey: labelKey(field), Widget: WidgetNumber}
}

func selectInput(field, source string) Input {
	return Input{Field: field, LabelKey: labelKey(field), Widget: WidgetSelect, Source: source}
}

func columns(fields ...string) []Column {
	out := make([]Column, 0, len(fields))
	for _, field := range fields {
		out = append(out, Column{Field: field, LabelKey: labelKey(field)})
	}
	return out
}
