// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// TransactionType indicates the direction of money movement.
type TransactionType string

// Transaction type constants.
const (
	TypeExpense  TransactionType = "EXPENSE"
	TypeIncome   TransactionType = "INCOME"
	TypeTransfer TransactionType = "TRANSFER"
)

// Category is a closed classification tag for a transaction.
type Category string

// Category constants.
const (
	CategoryFoodDining      Category = "FOOD_DINING"
	CategoryCoffeeTea       Category = "COFFEE_TEA"
	CategorySnacks          Category = "SNACKS"
	CategoryTransportation  Category = "TRANSPORTATION"
	CategoryPublicTransport Category = "PUBLIC_TRANSPORT"
	CategoryTaxiRideshare   Category = "TAXI_RIDESHARE"
	CategoryFuel            Category = "FUEL"
	CategoryParking         Category = "PARKING"
	CategoryShopping        Category = "SHOPPING"
	CategoryClothing        Category = "CLOTHING"
	CategoryElectronics     Category = "ELECTRONICS"
	CategoryBooks           Category = "BOOKS"
	CategoryGroceries       Category = "GROCERIES"
	CategoryEntertainment   Category = "ENTERTAINMENT"
	CategoryMovies          Category = "MOVIES"
	CategoryGames           Category = "GAMES"
	CategorySports          Category = "SPORTS"
	CategoryTravel          Category = "TRAVEL"
	CategoryUtilities       Category = "UTILITIES"
	CategoryRent            Category = "RENT"
	CategoryInsurance       Category = "INSURANCE"
	CategoryHealthcare      Category = "HEALTHCARE"
	CategoryEducation       Category = "EDUCATION"
	CategoryWorkExpenses    Category = "WORK_EXPENSES"
	CategoryReimbursement   Category = "REIMBURSEMENT"
	CategoryOther           Category = "OTHER"
	CategoryRefund          Category = "REFUND"
	CategoryTransfer        Category = "TRANSFER"
)

// Scenario tags special handling semantics orthogonal to category.
type Scenario string

// Scenario constants.
const (
	ScenarioRegular         Scenario = "REGULAR"
	ScenarioReimbursement   Scenario = "REIMBURSEMENT"
	ScenarioRefund          Scenario = "REFUND"
	ScenarioSubscription    Scenario = "SUBSCRIPTION"
	ScenarioRecurring       Scenario = "RECURRING"
	ScenarioSplitPayment    Scenario = "SPLIT_PAYMENT"
	ScenarioGift            Scenario = "GIFT"
	ScenarioBusinessExpense Scenario = "BUSINESS_EXPENSE"
	ScenarioPersonalExpense Scenario = "PERSONAL_EXPENSE"
)

// categoryLabels maps each category to its human-readable display label.
var categoryLabels = map[Category]string{
	CategoryFoodDining:      "Food & Dining",
	CategoryCoffeeTea:       "Coffee & Tea",
	CategorySnacks:          "Snacks",
	CategoryTransportation:  "Transportation",
	CategoryPublicTransport: "Public Transport",
	CategoryTaxiRideshare:   "Taxi & Rideshare",
	CategoryFuel:            "Fuel",
	CategoryParking:         "Parking",
	CategoryShopping:        "Shopping",
	CategoryClothing:        "Clothing",
	CategoryElectronics:     "Electronics",
	CategoryBooks:           "Books",
	CategoryGroceries:       "Groceries",
	CategoryEntertainment:   "Entertainment",
	CategoryMovies:          "Movies",
	CategoryGames:           "Games",
	CategorySports:          "Sports",
	CategoryTravel:          "Travel",
	CategoryUtilities:       "Utilities",
	CategoryRent:            "Rent",
	CategoryInsurance:       "Insurance",
	CategoryHealthcare:      "Healthcare",
	CategoryEducation:       "Education",
	CategoryWorkExpenses:    "Work Expenses",
	CategoryReimbursement:   "Reimbursement",
	CategoryOther:           "Other",
	CategoryRefund:          "Refund",
	CategoryTransfer:        "Transfer",
}

var typeLabels = map[TransactionType]string{
	TypeExpense:  "Expense",
	TypeIncome:   "Income",
	TypeTransfer: "Transfer",
}

var scenarioLabels = map[Scenario]string{
	ScenarioRegular:         "Regular",
	ScenarioReimbursement:   "Reimbursement",
	ScenarioRefund:          "Refund",
	ScenarioSubscription:    "Subscription",
	ScenarioRecurring:       "Recurring",
	ScenarioSplitPayment:    "Split Payment",
	ScenarioGift:            "Gift",
	ScenarioBusinessExpense: "Business Expense",
	ScenarioPersonalExpense: "Personal Expense",
}

// AllCategories returns every valid category in declaration order.
func AllCategories() []Category {
	return []Category{
		CategoryFoodDining, CategoryCoffeeTea, CategorySnacks,
		CategoryTransportation, CategoryPublicTransport, CategoryTaxiRideshare,
		CategoryFuel, CategoryParking,
		CategoryShopping, CategoryClothing, CategoryElectronics,
		CategoryBooks, CategoryGroceries,
		CategoryEntertainment, CategoryMovies, CategoryGames,
		CategorySports, CategoryTravel,
		CategoryUtilities, CategoryRent, CategoryInsurance,
		CategoryHealthcare, CategoryEducation,
		CategoryWorkExpenses, CategoryReimbursement,
		CategoryOther, CategoryRefund, CategoryTransfer,
	}
}

// AllScenarios returns every valid scenario in declaration order.
func AllScenarios() []Scenario {
	return []Scenario{
		ScenarioRegular, ScenarioReimbursement, ScenarioRefund,
		ScenarioSubscription, ScenarioRecurring, ScenarioSplitPayment,
		ScenarioGift, ScenarioBusinessExpense, ScenarioPersonalExpense,
	}
}

// AllTypes returns every valid transaction type.
func AllTypes() []TransactionType {
	return []TransactionType{TypeExpense, TypeIncome, TypeTransfer}
}

// Label returns the display label for the type.
func (t TransactionType) Label() string {
	return typeLabels[t]
}

// Label returns the display label for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Label returns the display label for the scenario.
func (s Scenario) Label() string {
	return scenarioLabels[s]
}

// ParseType maps a string onto a TransactionType, case-insensitively.
func ParseType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := typeLabels[t]; !ok {
		return "", fmt.Errorf("invalid transaction type: %q", s)
	}
	return t, nil
}

// ParseCategory maps a string onto a Category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("invalid category: %q", s)
	}
	return c, nil
}

// ParseScenario maps a string onto a Scenario, case-insensitively.
func ParseScenario(s string) (Scenario, error) {
	sc := Scenario(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := scenarioLabels[sc]; !ok {
		return "", fmt.Errorf("invalid scenario: %q", s)
	}
	return sc, nil
}
