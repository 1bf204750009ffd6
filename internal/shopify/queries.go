package shopify

// ProductMetafieldsQuery fetches a product with its metafields in the app namespace.
// The page size matches domain.MaxProductMetafields.
const ProductMetafieldsQuery = `
query productMetafields($id: ID!, $namespace: String!) {
  product(id: $id) {
    id
    title
    metafields(first: 250, namespace: $namespace) {
      edges {
        node {
          id
          key
          value
          valueType
          namespace
        }
      }
    }
  }
}
`

// ProductsQuery lists products with their first image. query is optional.
const ProductsQuery = `
query getProducts($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query) {
    pageInfo {
      hasNextPage
    }
    edges {
      cursor
      node {
        id
        title
        images(first: 1) {
          edges {
            node {
              originalSrc
              altText
            }
          }
        }
      }
    }
  }
}
`
