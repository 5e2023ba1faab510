package gridcalc

import "testing"

func TestDateBuildsSerialNumber(t *testing.T) {
	// 2020-01-01 is serial 43831 under the 1900 date system.
	newEngineCase(t).
		Formula("A1", "=DATE(2020, 1, 1)").
		Run().
		RequireNumber("A1", 43831)
}

func TestDateComponentExtraction(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=DATE(2020, 3, 15)").
		Formula("B1", "=YEAR(A1)").
		Formula("B2", "=MONTH(A1)").
		Formula("B3", "=DAY(A1)").
		Run().
		RequireNumber("B1", 2020).
		RequireNumber("B2", 3).
		RequireNumber("B3", 15)
}

func TestDaysBetweenDates(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=DATE(2020, 1, 10)").
		Formula("A2", "=DATE(2020, 1, 1)").
		Formula("B1", "=DAYS(A1, A2)").
		Run().
		RequireNumber("B1", 9)
}

func TestEdateShiftsByMonths(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=DATE(2020, 1, 31)").
		Formula("B1", "=EDATE(A1, 1)").
		Formula("C1", "=MONTH(B1)").
		Run().
		RequireNumber("C1", 3) // time.AddDate(0,1,0) on Jan 31 rolls into March
}
