package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayForName(t *testing.T) {
	cases := []struct {
		name    string
		weekday time.Weekday
		found   bool
	}{
		{"Lunes Salsa Iniciación", time.Monday, true},
		{"Martes Bachata", time.Tuesday, true},
		{"Miércoles Avanzado", time.Wednesday, true},
		{"Miercoles Avanzado", time.Wednesday, true},
		{"jueves", time.Thursday, true},
		{"VIERNES Social", time.Friday, true},
		{"Sábado Intensivo", time.Saturday, true},
		{"Sabado Intensivo", time.Saturday, true},
		{"Domingo Práctica", time.Sunday, true},
		{"Bachata Avanzado", time.Sunday, false},
		{"", time.Sunday, false},
	}
	for _, tc := range cases {
		weekday, found := WeekdayForName(tc.name)
		assert.Equal(t, tc.found, found, tc.name)
		assert.Equal(t, tc.weekday, weekday, tc.name)
	}
}

func TestWeekdayForNameFirstWordWins(t *testing.T) {
	weekday, found := WeekdayForName("Lunes y Jueves Salsa")
	assert.True(t, found)
	assert.Equal(t, time.Monday, weekday)

	weekday, found = WeekdayForName("Jueves y Lunes Salsa")
	assert.True(t, found)
	assert.Equal(t, time.Monday, weekday)
}

func TestClassWeekday(t *testing.T) {
	var category Category
	_, ok := category.ClassWeekday()
	assert.False(t, ok)

	monday := int(time.Monday)
	category.Weekday = &monday
	weekday, ok := category.ClassWeekday()
	assert.True(t, ok)
	assert.Equal(t, time.Monday, weekday)
}
