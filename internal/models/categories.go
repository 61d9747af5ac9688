package models

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
)

// FieldSpec описывает одно дополнительное поле категории расходов.
type FieldSpec struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
}

// CategoryFields — декларативный реестр дополнительных полей по категориям.
// Новая категория добавляется записью здесь, без ветвления в коде.
var CategoryFields = map[string][]FieldSpec{
	"utilities": {
		{Key: "provider", Label: "Provider", Type: FieldTypeText},
		{Key: "account_number", Label: "Account number", Type: FieldTypeText},
	},
	"insurance": {
		{Key: "provider", Label: "Provider", Type: FieldTypeText},
		{Key: "policy_number", Label: "Policy number", Type: FieldTypeText},
		{Key: "renewal_date", Label: "Renewal date", Type: FieldTypeDate},
	},
	"subscription": {
		{Key: "provider", Label: "Provider", Type: FieldTypeText},
	},
	"vehicle": {
		{Key: "registration", Label: "Registration", Type: FieldTypeText},
		{Key: "due_mileage", Label: "Due mileage", Type: FieldTypeNumber},
	},
	"pet": {
		{Key: "practice", Label: "Practice", Type: FieldTypeText},
	},
}

// AllowedMetadataKeys возвращает допустимые ключи метаданных категории.
// Для категорий вне реестра допустимы любые ключи.
func AllowedMetadataKeys(category string) (map[string]struct{}, bool) {
	specs, ok := CategoryFields[category]
	if !ok {
		return nil, false
	}

	keys := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		keys[spec.Key] = struct{}{}
	}

	return keys, true
}
