package date

// Day ordinals count days since 1970-01-01 on the proleptic Gregorian
// calendar. Eras are 400-year blocks starting on March 1st, which puts the
// leap day at the end of each computed year.

const (
	daysPerEra   = 146097
	epochShift   = 719468 // days from 0000-03-01 to 1970-01-01
	yearsPerEra  = 400
	daysPer5Mons = 153
)

func toOrdinal(d SimpleDate) int {
	y := d.Year
	if d.Month <= 2 {
		y--
	}
	era := floorDiv(y, yearsPerEra)
	yoe := y - era*yearsPerEra
	mp := (d.Month + 9) % 12 // March == 0
	doy := (daysPer5Mons*mp+2)/5 + d.Day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - epochShift
}

func fromOrdinal(n int) SimpleDate {
	z := n + epochShift
	era := floorDiv(z, daysPerEra)
	doe := z - era*daysPerEra
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / daysPer5Mons
	day := doy - (daysPer5Mons*mp+2)/5 + 1
	month := mp + 3
	if month > 12 {
		month -= 12
	}
	year := yoe + era*yearsPerEra
	if month <= 2 {
		year++
	}
	return FromYMD(year, month, day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
