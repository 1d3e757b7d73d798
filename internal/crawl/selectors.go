package crawl

// Selectors for the zhipin.com results page. The board's DOM is external
// and volatile; when it redesigns, this file is what changes.
const (
	selJobCard     = ".job-card-wrapper"
	selCardLeft    = ".job-card-left"
	selCardRight   = ".job-card-right"
	selJobTitle    = ".job-title"
	selTagList     = ".tag-list"
	selSalary      = ".salary"
	selContact     = ".info-public"
	selCompanyName = ".company-name"
	selCompanyTags = ".company-tag-list"

	selSearchInput  = ".input-wrap.input-wrap-text input.input"
	selSearchButton = ".search-btn"

	selCityDropdown = ".city-area-dropdown"
	selCityTab      = ".city-area-tab li"
	selCityList     = ".dropdown-city-list li"

	selPagination = ".pagination-area"
	selPager      = ".pager"
	selNextPage   = ".ui-icon-arrow-right"

	// SelLoginDialog and SelDialogClose identify the login popup the
	// watcher dismisses.
	SelLoginDialog = ".boss-login-dialog"
	SelDialogClose = "span"
)

// listedCities are the only cities the board's dropdown offers.
var listedCities = []string{
	"全国", "北京", "上海", "广州", "深圳", "杭州", "西安", "天津",
	"苏州", "武汉", "厦门", "成都", "长沙", "郑州", "重庆",
}
