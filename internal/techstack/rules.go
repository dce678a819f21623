package techstack

// Rules is the default detection table.
var Rules = []Rule{
	// JavaScript frameworks
	{Label: "jQuery", Category: CategoryFramework, Any: []Query{
		Global("jQuery.fn", "object"),
		Selector(`script[src*="jquery"], script[src*="jquery.min.js"]`),
	}},
	{Label: "React", Category: CategoryFramework, Any: []Query{
		Global("React.createElement", "function"),
		Selector(`script[src*="react"], script[src*="react.production.min.js"]`),
	}},
	{Label: "Vue", Category: CategoryFramework, Any: []Query{
		Global("Vue.version", "string"),
		Selector(`script[src*="vue"], script[src*="vue.global.js"], script[src*="vue.runtime.js"]`),
	}},
	{Label: "Angular", Category: CategoryFramework, Any: []Query{
		Global("angular.module", "function"),
		Selector(`[ng-version]`),
	}},
	{Label: "Ember.js", Category: CategoryFramework, Any: []Query{Global("Ember.VERSION", "string")}},
	{Label: "Backbone.js", Category: CategoryFramework, Any: []Query{Global("Backbone.Model", "function")}},
	{Label: "SvelteKit", Category: CategoryFramework, Any: []Query{Selector(`[sveltekit\:data]`)}},
	{Label: "React (Server-Side Rendered)", Category: CategoryFramework, Any: []Query{Selector(`[data-reactroot], [data-reactid]`)}},
	{Label: "Polymer", Category: CategoryFramework, Any: []Query{Selector(`script[src*="polymer"]`)}},

	// CMS
	{Label: "WordPress", Category: CategoryCMS, Any: []Query{
		Selector(`script[src*="wordpress"]`),
		Selector(`script[src*="wp-content"], link[href*="wp-content"]`),
		Selector(`meta[name="generator"][content*="WordPress"]`),
	}},
	{Label: "Drupal", Category: CategoryCMS, Any: []Query{Selector(`meta[content*="Drupal"]`)}},
	{Label: "Wix", Category: CategoryCMS, Any: []Query{Selector(`script[src*="wix"]`)}},
	{Label: "Ghost", Category: CategoryCMS, Any: []Query{Selector(`meta[content*="Ghost"]`)}},
	{Label: "Blogger", Category: CategoryCMS, Any: []Query{Selector(`meta[name="generator"][content*="Blogger"]`)}},
	{Label: "Zendesk", Category: CategoryCMS, Any: []Query{Selector(`script[src*="zendesk"]`)}},
	{Label: "SitePad", Category: CategoryCMS, Any: []Query{Selector(`script[src*="sitepad"]`)}},

	// E-commerce
	{Label: "Shopify", Category: CategoryEcommerce, Any: []Query{Selector(`script[src*="cdn.shopify.com"]`)}},
	{Label: "Magento", Category: CategoryEcommerce, Any: []Query{Selector(`meta[name="generator"][content*="Magento"]`)}},
	{Label: "WooCommerce", Category: CategoryEcommerce, Any: []Query{
		Selector(`script[src*="woocommerce"]`),
		Selector(`link[href*="woocommerce"], script[src*="wc-"], link[href*="wc-"]`),
	}},
	{Label: "PrestaShop", Category: CategoryEcommerce, Any: []Query{Selector(`meta[name="generator"][content*="PrestaShop"]`)}},
	{Label: "Shopware", Category: CategoryEcommerce, Any: []Query{Selector(`meta[name="application-name"][content*="Shopware"]`)}},
	{Label: "OpenCart", Category: CategoryEcommerce, Any: []Query{Selector(`meta[name="generator"][content*="OpenCart"]`)}},
	{Label: "BigCommerce", Category: CategoryEcommerce, Any: []Query{Selector(`script[src*="bigcommerce"]`)}},

	// Payments
	{Label: "Stripe", Category: CategoryPayment, Any: []Query{Selector(`script[src*="js.stripe.com"]`)}},
	{Label: "Klarna", Category: CategoryPayment, Any: []Query{Selector(`script[src*="klarna.com"]`)}},

	// Documentation
	{Label: "Swagger UI", Category: CategoryDocs, Any: []Query{Selector(`div[class*="swagger-ui"]`)}},
	{Label: "GitBook", Category: CategoryDocs, Any: []Query{Selector(`meta[content*="GitBook"]`)}},
	{Label: "Docusaurus", Category: CategoryDocs, Any: []Query{Selector(`meta[content*="Docusaurus"]`)}},
	{Label: "Sphinx", Category: CategoryDocs, Any: []Query{Selector(`meta[name="generator"][content*="Sphinx"]`)}},
	{Label: "BetterDocs", Category: CategoryDocs, Any: []Query{Selector(`script[src*="betterdocs"]`)}},
	{Label: "MkDocs", Category: CategoryDocs, Any: []Query{Selector(`script[src*="mkdocs"]`)}},

	// CSS and UI libraries
	{Label: "Bootstrap", Category: CategoryUI, Any: []Query{Selector(`link[href*="bootstrap"], link[href*="bootstrap.min.css"]`)}},
	{Label: "Animate.css", Category: CategoryUI, Any: []Query{Selector(`link[href*="animate.css"]`)}},
	{Label: "Tailwind CSS", Category: CategoryUI, Any: []Query{Selector(`link[href*="tailwind"], link[href*="tailwind.min.css"]`)}},
	{Label: "ZURB Foundation", Category: CategoryUI, Any: []Query{Selector(`link[href*="foundation"]`)}},
	{Label: "CivicTheme", Category: CategoryUI, Any: []Query{Selector(`link[href*="civictheme"]`)}},
	{Label: "MUI", Category: CategoryUI, Any: []Query{Selector(`.MuiButton-root`)}},
	{Label: "UIKit", Category: CategoryUI, Any: []Query{Selector(`[class*="uikit"]`)}},
	{Label: "Element UI", Category: CategoryUI, Any: []Query{Selector(`[class*="el-"]`)}},
	{Label: "Material Design Lite", Category: CategoryUI, Any: []Query{Selector(`link[href*="material.min.css"]`)}},
	{Label: "Ant Design", Category: CategoryUI, Any: []Query{Selector(`[class*="ant-"]`)}},

	// Static site generators
	{Label: "Gatsby", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="gatsby"], script[src*="gatsby.min.js"]`)}},
	{Label: "Next.js", Category: CategorySiteGenerator, Any: []Query{
		Selector(`script[src*="next"], script[src*="next.min.js"]`),
		Global("__NEXT_DATA__", ""),
	}},
	{Label: "Nuxt.js", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="nuxt"], script[src*="nuxt.min.js"]`)}},
	{Label: "Astro", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="astro"], script[src*="astro.min.js"]`)}},
	{Label: "Hugo", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="hugo"], script[src*="hugo.min.js"]`)}},
	{Label: "Adobe Muse", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="adobe"]`)}},
	{Label: "VuePress", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="vuepress"]`)}},
	{Label: "VitePress", Category: CategorySiteGenerator, Any: []Query{Selector(`script[src*="vitepress"]`)}},

	// Test frameworks
	{Label: "Jasmine", Category: CategoryTesting, Any: []Query{Global("jasmine", "object")}},
	{Label: "Mocha", Category: CategoryTesting, Any: []Query{Global("mocha.describe", "function")}},
	{Label: "Chai", Category: CategoryTesting, Any: []Query{Global("chai.assert", "function")}},
	{Label: "QUnit", Category: CategoryTesting, Any: []Query{Global("QUnit.test", "function")}},

	// Charts
	{Label: "Chart.js", Category: CategoryCharts, Any: []Query{Global("Chart", "function")}},
	{Label: "Highcharts", Category: CategoryCharts, Any: []Query{Global("Highcharts.chart", "function")}},
	{Label: "amCharts", Category: CategoryCharts, Any: []Query{Global("am4core.create", "function")}},
	{Label: "Plotly.js", Category: CategoryCharts, Any: []Query{Global("Plotly.newPlot", "function")}},

	// Analytics
	{Label: "Google Analytics", Category: CategoryAnalytics, Any: []Query{Global("ga", "function")}},
	{Label: "Facebook Pixel", Category: CategoryAnalytics, Any: []Query{Global("fbq", "function")}},
	{Label: "Hotjar", Category: CategoryAnalytics, Any: []Query{Selector(`script[src*="hotjar"]`)}},
	{Label: "Mixpanel", Category: CategoryAnalytics, Any: []Query{Selector(`script[src*="mixpanel"]`)}},
	{Label: "Segment", Category: CategoryAnalytics, Any: []Query{Selector(`script[src*="segment"]`)}},

	// Others
	{Label: "Firebase", Category: CategoryOther, Any: []Query{Global("firebase", "object")}},
	{Label: "GSAP", Category: CategoryOther, Any: []Query{
		Global("gsap.to", "function"),
		Global("_gsap.to", "function"),
	}},
	{Label: "Three.js", Category: CategoryOther, Any: []Query{
		Selector(`script[src*="three"], script[src*="three.min.js"]`),
		Global("THREE", "object"),
	}},
}
