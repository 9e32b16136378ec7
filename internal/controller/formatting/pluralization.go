package formatting

// pluralize выбирает форму слова для русского числительного: 1 слот, 2 слота, 5 слотов
func pluralize(count int, one, few, many string) string {
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	return pluralize(count, "слот", "слота", "слотов")
}

// PluralizeLessons возвращает правильное склонение слова "занятие"
func PluralizeLessons(count int) string {
	return pluralize(count, "занятие", "занятия", "занятий")
}

// PluralizeRequests возвращает правильное склонение слова "заявка"
func PluralizeRequests(count int) string {
	return pluralize(count, "заявка", "заявки", "заявок")
}

// PluralizeStudents возвращает правильное склонение слова "студент"
func PluralizeStudents(count int) string {
	return pluralize(count, "студент", "студента", "студентов")
}
