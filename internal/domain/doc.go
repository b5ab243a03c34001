// Package domain models the Spanish regional COVID-19 hospitalization series
// and the comparisons derived from it.
//
// # Data Source
//
// The Instituto de Salud Carlos III (ISCIII) published the accumulated series
// as serie_historica_acumulados.csv. The file is Windows-1252 encoded, has one
// row per region per day, and ends with a couple of free-text note lines that
// are not data. Only three columns are used:
//
//	CCAA            region code, e.g. "GA" (Galicia), "MD" (Madrid)
//	FECHA           report date, day/month/year, e.g. "14/3/2020"
//	Hospitalizados  accumulated hospitalizations, may be empty
//
// Empty counts are read as zero. Rows still missing a region or a date are
// dropped. A count that is not a whole non-negative number, or a date that
// does not parse, fails the whole load.
//
// # Population Table
//
// PopulationCA.csv is an INE extract: semicolon separated, Windows-1252,
// with a "Comunidades y Ciudades Autónomas" description such as
// "13 Madrid, Comunidad de" and a "Total" column using '.' as the thousands
// separator. Descriptions are resolved to region codes with
// [RegionCodeFromDescription]; rows that do not resolve are skipped.
//
// # Derived Views
//
//	National      sum of every region per date, ascending by date
//	ForRegion     rows of one region, in source order
//	ByRegion      one series per region, regions in first-appearance order
//	Variation     first difference, first point undefined, optional spike filter
//	WeekOverWeek  latest date against the date N days earlier, per region and national
//	PopulationRates  latest counts per 10,000 inhabitants and deviation from the national rate
package domain
