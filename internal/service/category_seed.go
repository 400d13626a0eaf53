package service

import "finanzas-be/internal/entities"

type predefinedCategory struct {
	Name        string
	Description string
}

// predefinedCategories are seeded on every startup. The last four are
// income categories; the rest are expenses.
var predefinedCategories = []predefinedCategory{
	{"Alimentacion", "Gastos relacionados con comida y bebida"},
	{"Transporte", "Gastos de movilizacion y transporte"},
	{"Entretenimiento", "Gastos de ocio, entretenimiento y diversion"},
	{"Salud", "Gastos medicos y de salud"},
	{"Educacion", "Gastos educativos y de formacion"},
	{"Servicios", "Servicios basicos como luz, agua, internet"},
	{"Ropa", "Gastos en vestimenta y calzado"},
	{"Hogar", "Gastos del hogar y decoracion"},
	{"Tecnologia", "Gastos en dispositivos y software"},
	{"Otros", "Otros gastos no categorizados"},
	{"Salario", "Ingresos por trabajo"},
	{"Inversiones", "Ingresos por inversiones"},
	{"Negocios", "Ingresos por actividades comerciales"},
	{"Otros Ingresos", "Otros tipos de ingresos"},
}

// seedKind maps a predefined name onto its stored kind.
func seedKind(name string) entities.CategoryKind {
	if entities.IsIncomeCategoryName(name) {
		return entities.KindIncome
	}
	return entities.KindExpense
}
